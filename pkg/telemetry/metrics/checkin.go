package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"rollcall-hq/attendance/pkg/config"
)

// CheckinMetrics tracks check-in submissions.
//
// Metrics:
//   - rollcall_checkins_total: Submissions by result (accepted, duplicate,
//     invalid, unknown_student, error)
type CheckinMetrics struct {
	checkinsTotal *prometheus.CounterVec
}

// NewCheckinMetrics creates and registers check-in metrics.
func NewCheckinMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CheckinMetrics {
	cm := &CheckinMetrics{
		checkinsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "checkins_total",
				Help:      "Check-in submissions by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(cm.checkinsTotal)
	return cm
}

// RecordOutcome increments the counter for outcome.
func (cm *CheckinMetrics) RecordOutcome(outcome string) {
	cm.checkinsTotal.WithLabelValues(outcome).Inc()
}
