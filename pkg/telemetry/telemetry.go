package telemetry

import (
	"fmt"
	"io"

	"rollcall-hq/attendance/pkg/config"
	"rollcall-hq/attendance/pkg/telemetry/health"
	"rollcall-hq/attendance/pkg/telemetry/logging"
	"rollcall-hq/attendance/pkg/telemetry/metrics"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Telemetry holds the logger, metrics collector and health checker built
// from one TelemetryConfig.
type Telemetry struct {
	Logger  *logging.Logger
	Metrics *metrics.Collector
	Health  *health.Checker
	Build   BuildInfo

	config *config.TelemetryConfig
}

// New builds the telemetry components. Logs go to w, or stderr when w is nil.
func New(cfg *config.TelemetryConfig, build BuildInfo, w io.Writer) (*Telemetry, error) {
	logger, err := logging.New(logging.Config{
		Level:           cfg.Logging.Level,
		Format:          cfg.Logging.Format,
		AddSource:       cfg.Logging.AddSource,
		RedactAddresses: cfg.Logging.RedactAddresses,
		Writer:          w,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &Telemetry{
		Logger:  logger,
		Metrics: metrics.NewCollector(&cfg.Metrics, nil),
		Health:  health.New(cfg.Health.CheckTimeout),
		Build:   build,
		config:  cfg,
	}, nil
}

// Config returns the configuration the components were built from.
func (t *Telemetry) Config() *config.TelemetryConfig {
	return t.config
}
