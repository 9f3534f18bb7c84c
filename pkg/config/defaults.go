package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "0.0.0.0:3000"
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576        // 1MB
	DefaultMaxUploadBytes  = int64(8 << 20) // 8MB
	DefaultServerMode      = "release"

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Storage defaults
	DefaultStorageBackend    = "json"
	DefaultJSONPath          = "logs/diem_danh_log.json"
	DefaultSQLitePath        = "logs/diem_danh.db"
	DefaultSQLiteDriver      = "sqlite"
	DefaultSQLiteBusyTimeout = 5 * time.Second

	// Upload defaults
	DefaultUploadsDir         = "uploads"
	DefaultUploadsURLPrefix   = "/uploads"
	DefaultUploadsPlaceholder = "/static/default-avatar.png"

	// Roster defaults
	DefaultRosterPath             = "danh_sach_sinh_vien.xlsx"
	DefaultRosterWatch            = true
	DefaultRosterDebounceInterval = 500 * time.Millisecond

	// Retention defaults
	DefaultRetentionEnabled    = true
	DefaultRetentionThreshold  = 48 * time.Hour
	DefaultRetentionInterval   = time.Hour
	DefaultRetentionRunOnStart = true

	DefaultTimezone = "Asia/Ho_Chi_Minh"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultPrometheusPath     = "/metrics"
	DefaultMetricsNamespace   = "rollcall"
	DefaultLivenessPath       = "/health"
	DefaultReadinessPath      = "/ready"
	DefaultVersionPath        = "/version"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultSweepDurationBuckets are the default sweep duration histogram buckets.
var DefaultSweepDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// Default returns a configuration with every field set to its default,
// including the boolean switches that default to true. LoadConfig decodes
// YAML on top of it so an explicit false in the file is preserved.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			CORS: CORSConfig{Enabled: DefaultCORSEnabled},
		},
		Roster:    RosterConfig{Watch: DefaultRosterWatch},
		Retention: RetentionConfig{Enabled: DefaultRetentionEnabled, RunOnStart: DefaultRetentionRunOnStart},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values. Boolean fields are
// left alone; see Default.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.JSON.Path == "" {
		cfg.Storage.JSON.Path = DefaultJSONPath
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.Driver == "" {
		cfg.Storage.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Upload defaults
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = DefaultUploadsDir
	}
	if cfg.Uploads.URLPrefix == "" {
		cfg.Uploads.URLPrefix = DefaultUploadsURLPrefix
	}
	if cfg.Uploads.Placeholder == "" {
		cfg.Uploads.Placeholder = DefaultUploadsPlaceholder
	}

	// Roster defaults
	if cfg.Roster.Path == "" {
		cfg.Roster.Path = DefaultRosterPath
	}
	if cfg.Roster.DebounceInterval == 0 {
		cfg.Roster.DebounceInterval = DefaultRosterDebounceInterval
	}

	// Retention defaults
	if cfg.Retention.Threshold == 0 {
		cfg.Retention.Threshold = DefaultRetentionThreshold
	}
	if cfg.Retention.Interval == 0 {
		cfg.Retention.Interval = DefaultRetentionInterval
	}

	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Metrics.SweepDurationBuckets) == 0 {
		cfg.Metrics.SweepDurationBuckets = append([]float64(nil), DefaultSweepDurationBuckets...)
	}

	if cfg.Health.LivenessPath == "" {
		cfg.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Health.ReadinessPath == "" {
		cfg.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Health.VersionPath == "" {
		cfg.Health.VersionPath = DefaultVersionPath
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
