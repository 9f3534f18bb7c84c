package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rollcall.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8080"
  read_timeout: "90s"

storage:
  backend: "sqlite"
  sqlite:
    path: "./data/attendance.db"
    driver: "sqlite3"

roster:
  path: "class.csv"
  watch: false
  allow_unknown: true

retention:
  threshold: 72h
  run_on_start: false

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:8080" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:8080", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 90*time.Second {
		t.Errorf("expected read timeout %v, got %v", 90*time.Second, cfg.Server.ReadTimeout)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.SQLite.Driver != "sqlite3" {
		t.Errorf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Roster.Watch {
		t.Error("explicit watch: false was overridden by the default")
	}
	if !cfg.Roster.AllowUnknown {
		t.Error("expected allow_unknown to be true")
	}
	if cfg.Retention.Threshold != 72*time.Hour {
		t.Errorf("expected threshold 72h, got %v", cfg.Retention.Threshold)
	}
	if cfg.Retention.RunOnStart {
		t.Error("explicit run_on_start: false was overridden by the default")
	}
	if !cfg.Retention.Enabled {
		t.Error("unset retention.enabled should keep its default")
	}
	if cfg.Retention.Interval != DefaultRetentionInterval {
		t.Errorf("expected default interval, got %v", cfg.Retention.Interval)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")

	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: "postgres"
`)

	_, err := LoadConfig(path)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors[0].Field != "storage.backend" {
		t.Errorf("expected storage.backend error, got %v", verr.Errors)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8080"
roster:
  allow_unknown: false
`)

	t.Setenv("ROLLCALL_SERVER_LISTEN_ADDRESS", "0.0.0.0:9000")
	t.Setenv("ROLLCALL_ROSTER_ALLOW_UNKNOWN", "true")
	t.Setenv("ROLLCALL_RETENTION_THRESHOLD", "1h")
	t.Setenv("ROLLCALL_STORAGE_BACKEND", "memory")
	t.Setenv("ROLLCALL_SERVER_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ROLLCALL_SERVER_MAX_UPLOAD_BYTES", "1048576")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("expected env listen address, got %q", cfg.Server.ListenAddress)
	}
	if !cfg.Roster.AllowUnknown {
		t.Error("expected env to enable allow_unknown")
	}
	if cfg.Retention.Threshold != time.Hour {
		t.Errorf("expected threshold 1h, got %v", cfg.Retention.Threshold)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("expected memory backend, got %q", cfg.Storage.Backend)
	}
	if len(cfg.Server.CORS.AllowedOrigins) != 2 || cfg.Server.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.Server.CORS.AllowedOrigins)
	}
	if cfg.Server.MaxUploadBytes != 1<<20 {
		t.Errorf("expected 1MiB upload limit, got %d", cfg.Server.MaxUploadBytes)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("ROLLCALL_TIMEZONE", "UTC")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("expected UTC, got %q", cfg.Timezone)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Server.ListenAddress)
	}
}

func TestLoadConfigWithEnvOverrides_BadValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"duration", "ROLLCALL_RETENTION_INTERVAL", "often"},
		{"boolean", "ROLLCALL_ROSTER_WATCH", "sometimes"},
		{"integer", "ROLLCALL_SERVER_MAX_HEADER_BYTES", "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfigWithEnvOverrides("")
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Errors[0].Field != tt.key {
				t.Errorf("expected error on %s, got %v", tt.key, verr.Errors)
			}
		})
	}
}
