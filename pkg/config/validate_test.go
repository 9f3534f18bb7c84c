package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"empty listen address", func(c *Config) { c.Server.ListenAddress = "" }, "server.listen_address"},
		{"listen address without port", func(c *Config) { c.Server.ListenAddress = "localhost" }, "server.listen_address"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }, "server.read_timeout"},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "server.max_upload_bytes"},
		{"bad gin mode", func(c *Config) { c.Server.Mode = "production" }, "server.mode"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"sqlite bad driver", func(c *Config) {
			c.Storage.Backend = "sqlite"
			c.Storage.SQLite.Driver = "postgres"
		}, "storage.sqlite.driver"},
		{"json without path", func(c *Config) { c.Storage.JSON.Path = "" }, "storage.json.path"},
		{"memory backend", func(c *Config) { c.Storage.Backend = "memory" }, ""},
		{"relative url prefix", func(c *Config) { c.Uploads.URLPrefix = "uploads" }, "uploads.url_prefix"},
		{"empty roster path", func(c *Config) { c.Roster.Path = "" }, "roster.path"},
		{"zero threshold", func(c *Config) { c.Retention.Threshold = 0 }, "retention.threshold"},
		{"sub-second interval", func(c *Config) { c.Retention.Interval = time.Millisecond }, "retention.interval"},
		{"unknown timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"bad log level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"bad log format", func(c *Config) { c.Telemetry.Logging.Format = "console" }, "telemetry.logging.format"},
		{"unordered buckets", func(c *Config) {
			c.Telemetry.Metrics.SweepDurationBuckets = []float64{1, 0.5}
		}, "telemetry.metrics.sweep_duration_buckets"},
		{"relative readiness path", func(c *Config) { c.Telemetry.Health.ReadinessPath = "ready" }, "telemetry.health.readiness_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if got := multi.Error(); !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: worse") {
		t.Errorf("unexpected message %q", got)
	}
}
