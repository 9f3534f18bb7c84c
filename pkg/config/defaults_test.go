package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		check func(*testing.T, *Config)
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.ListenAddress != DefaultListenAddress {
					t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
				}
				if cfg.Server.MaxUploadBytes != DefaultMaxUploadBytes {
					t.Errorf("expected max upload bytes %d, got %d", DefaultMaxUploadBytes, cfg.Server.MaxUploadBytes)
				}
				if cfg.Storage.Backend != DefaultStorageBackend {
					t.Errorf("expected backend %q, got %q", DefaultStorageBackend, cfg.Storage.Backend)
				}
				if cfg.Storage.JSON.Path != DefaultJSONPath {
					t.Errorf("expected JSON path %q, got %q", DefaultJSONPath, cfg.Storage.JSON.Path)
				}
				if cfg.Storage.SQLite.Driver != DefaultSQLiteDriver {
					t.Errorf("expected SQLite driver %q, got %q", DefaultSQLiteDriver, cfg.Storage.SQLite.Driver)
				}
				if cfg.Uploads.Placeholder != DefaultUploadsPlaceholder {
					t.Errorf("expected placeholder %q, got %q", DefaultUploadsPlaceholder, cfg.Uploads.Placeholder)
				}
				if cfg.Roster.Path != DefaultRosterPath {
					t.Errorf("expected roster path %q, got %q", DefaultRosterPath, cfg.Roster.Path)
				}
				if cfg.Retention.Interval != DefaultRetentionInterval {
					t.Errorf("expected interval %v, got %v", DefaultRetentionInterval, cfg.Retention.Interval)
				}
				if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
					t.Errorf("expected logging level %q, got %q", DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
				}
				if cfg.Telemetry.Metrics.Path != DefaultPrometheusPath {
					t.Errorf("expected prometheus path %q, got %q", DefaultPrometheusPath, cfg.Telemetry.Metrics.Path)
				}
				if cfg.Telemetry.Health.ReadinessPath != DefaultReadinessPath {
					t.Errorf("expected readiness path %q, got %q", DefaultReadinessPath, cfg.Telemetry.Health.ReadinessPath)
				}
			},
		},
		{
			name: "existing values are preserved",
			input: Config{
				Server: ServerConfig{
					ListenAddress:  "127.0.0.1:9090",
					ReadTimeout:    10 * time.Second,
					MaxUploadBytes: 1024,
				},
				Storage:   StorageConfig{Backend: "sqlite"},
				Retention: RetentionConfig{Threshold: 24 * time.Hour},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.ListenAddress != "127.0.0.1:9090" {
					t.Error("existing listen address was overwritten")
				}
				if cfg.Server.ReadTimeout != 10*time.Second {
					t.Error("existing read timeout was overwritten")
				}
				if cfg.Server.MaxUploadBytes != 1024 {
					t.Error("existing upload limit was overwritten")
				}
				if cfg.Storage.Backend != "sqlite" {
					t.Error("existing backend was overwritten")
				}
				if cfg.Retention.Threshold != 24*time.Hour {
					t.Error("existing threshold was overwritten")
				}
			},
		},
		{
			name:  "booleans are left untouched",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Roster.Watch || cfg.Retention.Enabled || cfg.Telemetry.Metrics.Enabled {
					t.Error("ApplyDefaults must not switch booleans on")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			ApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := Config{}
	ApplyDefaults(&cfg)
	first := cfg.Server
	ApplyDefaults(&cfg)

	if cfg.Server.ListenAddress != first.ListenAddress || cfg.Server.ReadTimeout != first.ReadTimeout {
		t.Error("second ApplyDefaults changed values")
	}
	if len(cfg.Server.CORS.AllowedOrigins) != 1 {
		t.Errorf("expected 1 origin, got %v", cfg.Server.CORS.AllowedOrigins)
	}
}
