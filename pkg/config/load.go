package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "ROLLCALL_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Default, remaining zero values are filled
// by ApplyDefaults, and the result is validated.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention ROLLCALL_SECTION_FIELD (e.g., ROLLCALL_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from Default.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. A variable that is set but cannot be parsed is reported as
// a validation error instead of being silently ignored.
func applyEnvOverrides(cfg *Config) error {
	env := envReader{}

	// Server overrides
	env.str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	env.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	env.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	env.duration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	env.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	env.integer("SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)
	env.int64("SERVER_MAX_UPLOAD_BYTES", &cfg.Server.MaxUploadBytes)
	env.str("SERVER_MODE", &cfg.Server.Mode)
	env.list("SERVER_TRUSTED_PROXIES", &cfg.Server.TrustedProxies)
	env.boolean("SERVER_CORS_ENABLED", &cfg.Server.CORS.Enabled)
	env.list("SERVER_CORS_ALLOWED_ORIGINS", &cfg.Server.CORS.AllowedOrigins)

	// Storage overrides
	env.str("STORAGE_BACKEND", &cfg.Storage.Backend)
	env.str("STORAGE_JSON_PATH", &cfg.Storage.JSON.Path)
	env.str("STORAGE_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	env.str("STORAGE_SQLITE_DRIVER", &cfg.Storage.SQLite.Driver)
	env.duration("STORAGE_SQLITE_BUSY_TIMEOUT", &cfg.Storage.SQLite.BusyTimeout)

	// Upload overrides
	env.str("UPLOADS_DIR", &cfg.Uploads.Dir)
	env.str("UPLOADS_URL_PREFIX", &cfg.Uploads.URLPrefix)
	env.str("UPLOADS_PLACEHOLDER", &cfg.Uploads.Placeholder)

	// Roster overrides
	env.str("ROSTER_PATH", &cfg.Roster.Path)
	env.boolean("ROSTER_WATCH", &cfg.Roster.Watch)
	env.duration("ROSTER_DEBOUNCE_INTERVAL", &cfg.Roster.DebounceInterval)
	env.boolean("ROSTER_ALLOW_UNKNOWN", &cfg.Roster.AllowUnknown)

	// Retention overrides
	env.boolean("RETENTION_ENABLED", &cfg.Retention.Enabled)
	env.duration("RETENTION_THRESHOLD", &cfg.Retention.Threshold)
	env.duration("RETENTION_INTERVAL", &cfg.Retention.Interval)
	env.boolean("RETENTION_RUN_ON_START", &cfg.Retention.RunOnStart)

	env.str("TIMEZONE", &cfg.Timezone)

	// Telemetry overrides
	env.str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	env.str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	env.boolean("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	env.boolean("TELEMETRY_LOGGING_REDACT_ADDRESSES", &cfg.Telemetry.Logging.RedactAddresses)
	env.boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	env.str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	env.str("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	env.duration("TELEMETRY_HEALTH_CHECK_TIMEOUT", &cfg.Telemetry.Health.CheckTimeout)

	if len(env.errs) > 0 {
		return ValidationError{Errors: env.errs}
	}
	return nil
}

// envReader reads ROLLCALL_ variables into config fields, collecting parse
// failures.
type envReader struct {
	errs []FieldError
}

func (e *envReader) lookup(name string) (string, bool) {
	val, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func (e *envReader) fail(name, val, kind string) {
	e.errs = append(e.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("invalid %s %q", kind, val),
	})
}

func (e *envReader) str(name string, dst *string) {
	if val, ok := e.lookup(name); ok {
		*dst = val
	}
}

func (e *envReader) list(name string, dst *[]string) {
	val, ok := e.lookup(name)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (e *envReader) duration(name string, dst *time.Duration) {
	val, ok := e.lookup(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		e.fail(name, val, "duration")
		return
	}
	*dst = d
}

func (e *envReader) boolean(name string, dst *bool) {
	val, ok := e.lookup(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		e.fail(name, val, "boolean")
		return
	}
	*dst = b
}

func (e *envReader) integer(name string, dst *int) {
	val, ok := e.lookup(name)
	if !ok {
		return
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		e.fail(name, val, "integer")
		return
	}
	*dst = i
}

func (e *envReader) int64(name string, dst *int64) {
	val, ok := e.lookup(name)
	if !ok {
		return
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		e.fail(name, val, "integer")
		return
	}
	*dst = i
}
