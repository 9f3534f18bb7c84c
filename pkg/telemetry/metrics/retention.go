package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rollcall-hq/attendance/pkg/config"
)

// RetentionMetrics tracks photo sweeps.
//
// Metrics:
//   - rollcall_sweep_runs_total: Sweeps by status (success, partial, error)
//   - rollcall_sweep_duration_seconds: Sweep duration histogram
//   - rollcall_photos_reclaimed_total: Photos deleted by sweeps
//   - rollcall_photo_delete_failures_total: Photos a sweep failed to delete
type RetentionMetrics struct {
	runsTotal      *prometheus.CounterVec
	duration       prometheus.Histogram
	reclaimed      prometheus.Counter
	deleteFailures prometheus.Counter
}

// NewRetentionMetrics creates and registers sweep metrics.
func NewRetentionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RetentionMetrics {
	rm := &RetentionMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "sweep_runs_total",
				Help:      "Photo sweeps by status",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of photo sweeps in seconds",
				Buckets:   cfg.SweepDurationBuckets,
			},
		),
		reclaimed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "photos_reclaimed_total",
				Help:      "Photos deleted by the retention sweep",
			},
		),
		deleteFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "photo_delete_failures_total",
				Help:      "Photos the retention sweep failed to delete",
			},
		),
	}

	registry.MustRegister(rm.runsTotal, rm.duration, rm.reclaimed, rm.deleteFailures)
	return rm
}

// RecordSweep records one sweep.
func (rm *RetentionMetrics) RecordSweep(duration time.Duration, cleared, failures int, err error) {
	status := "success"
	switch {
	case err != nil:
		status = "error"
	case failures > 0:
		status = "partial"
	}

	rm.runsTotal.WithLabelValues(status).Inc()
	rm.duration.Observe(duration.Seconds())
	if cleared > 0 {
		rm.reclaimed.Add(float64(cleared))
	}
	if failures > 0 {
		rm.deleteFailures.Add(float64(failures))
	}
}
