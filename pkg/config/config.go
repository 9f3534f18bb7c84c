package config

import "time"

// Config is the root configuration structure for the rollcall service.
// It contains all configuration sections for the HTTP server, the record
// store, photo uploads, the roster, photo retention, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and upload limits.
	Server ServerConfig `yaml:"server"`

	// Storage selects and configures the persistence backend of the
	// attendance log.
	Storage StorageConfig `yaml:"storage"`

	// Uploads configures the directory holding check-in photos.
	Uploads UploadsConfig `yaml:"uploads"`

	// Roster configures the class roster file and its reload behaviour.
	Roster RosterConfig `yaml:"roster"`

	// Retention configures the periodic photo sweep.
	Retention RetentionConfig `yaml:"retention"`

	// Timezone is the IANA zone used for check-in timestamps and day
	// boundaries.
	// Default: "Asia/Ho_Chi_Minh"
	Timezone string `yaml:"timezone"`

	// Telemetry contains configuration for logging, metrics, and health
	// endpoints.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:3000", "0.0.0.0:3000").
	// Default: "0.0.0.0:3000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Uploads from phones on slow networks need headroom.
	// Default: 60s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxUploadBytes is the largest accepted check-in photo.
	// Default: 8388608 (8MB)
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Mode is the gin mode: "release", "debug" or "test".
	// Default: "release"
	Mode string `yaml:"mode"`

	// TrustedProxies lists proxy addresses whose forwarding headers are
	// honoured when resolving the client address. Empty trusts none.
	TrustedProxies []string `yaml:"trusted_proxies"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are sent.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// StorageConfig contains configuration for the attendance log backend.
type StorageConfig struct {
	// Backend selects the persistence strategy.
	// Options: "json", "sqlite", "memory"
	// Default: "json"
	Backend string `yaml:"backend"`

	// JSON configures the JSON file backend.
	JSON JSONStorageConfig `yaml:"json"`

	// SQLite configures the SQLite backend.
	SQLite SQLiteStorageConfig `yaml:"sqlite"`
}

// JSONStorageConfig configures the JSON file backend.
type JSONStorageConfig struct {
	// Path is the location of the log file.
	// Default: "logs/diem_danh_log.json"
	Path string `yaml:"path"`
}

// SQLiteStorageConfig configures the SQLite backend.
type SQLiteStorageConfig struct {
	// Path is the database file path.
	// Default: "logs/diem_danh.db"
	Path string `yaml:"path"`

	// Driver is the database/sql driver name: "sqlite" (pure Go) or
	// "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// BusyTimeout is how long a write waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// UploadsConfig configures photo storage.
type UploadsConfig struct {
	// Dir is the directory photos are written to.
	// Default: "uploads"
	Dir string `yaml:"dir"`

	// URLPrefix is the public path photos are served under.
	// Default: "/uploads"
	URLPrefix string `yaml:"url_prefix"`

	// Placeholder is shown instead of a photo that has been reclaimed.
	// Default: "/static/default-avatar.png"
	Placeholder string `yaml:"placeholder"`
}

// RosterConfig configures the class roster.
type RosterConfig struct {
	// Path is the roster spreadsheet. A .csv sibling with the same name is
	// used when the .xlsx file is absent.
	// Default: "danh_sach_sinh_vien.xlsx"
	Path string `yaml:"path"`

	// Watch reloads the roster when the file changes.
	// Default: true
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a changed roster is
	// reloaded.
	// Default: 500ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// AllowUnknown accepts check-ins from ids that are not on a loaded
	// roster, naming them "Sinh viên <id>".
	// Default: false
	AllowUnknown bool `yaml:"allow_unknown"`
}

// RetentionConfig configures the photo sweep.
type RetentionConfig struct {
	// Enabled starts the periodic sweep with the server.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Threshold is the age after which a photo is deleted.
	// Default: 48h
	Threshold time.Duration `yaml:"threshold"`

	// Interval is the time between sweeps.
	// Default: 1h
	Interval time.Duration `yaml:"interval"`

	// RunOnStart sweeps once immediately when the scheduler starts.
	// Default: true
	RunOnStart bool `yaml:"run_on_start"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactAddresses masks client IP addresses in log output.
	// Default: false
	RedactAddresses bool `yaml:"redact_addresses"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "rollcall"
	Namespace string `yaml:"namespace"`

	// SweepDurationBuckets defines histogram buckets for sweep duration
	// (seconds).
	// Default: [0.01, 0.05, 0.1, 0.5, 1, 5, 30]
	SweepDurationBuckets []float64 `yaml:"sweep_duration_buckets"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
