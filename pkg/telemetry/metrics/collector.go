package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall-hq/attendance/pkg/config"
)

// Collector owns every Prometheus metric of the service and a private
// registry they are registered with.
//
// Components do not import this package. They expose hooks (OnOutcome,
// OnSweep, OnReload) that the wiring code points at the Record methods.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	checkinMetrics   *CheckinMetrics
	retentionMetrics *RetentionMetrics
	httpMetrics      *HTTPMetrics

	rosterReloads *prometheus.CounterVec

	// Cardinality tracking for the route label
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and registry. If registry is nil a new one is created and
// the Go runtime and process collectors are registered on it.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "rollcall"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.SweepDurationBuckets) == 0 {
		cfg.SweepDurationBuckets = append([]float64(nil), config.DefaultSweepDurationBuckets...)
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(200),
	}

	c.checkinMetrics = NewCheckinMetrics(cfg, registry)
	c.retentionMetrics = NewRetentionMetrics(cfg, registry)
	c.httpMetrics = NewHTTPMetrics(cfg, registry)

	c.rosterReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "roster_reloads_total",
			Help:      "Roster reload attempts by status",
		},
		[]string{"status"},
	)
	registry.MustRegister(c.rosterReloads)

	return c
}

// RecordCheckin records the outcome of one check-in submission.
func (c *Collector) RecordCheckin(outcome string) {
	if !c.config.Enabled {
		return
	}
	c.checkinMetrics.RecordOutcome(outcome)
}

// RecordSweep records a completed sweep. Its signature matches the
// sweeper's OnSweep hook.
func (c *Collector) RecordSweep(duration time.Duration, cleared, failures int, err error) {
	if !c.config.Enabled {
		return
	}
	c.retentionMetrics.RecordSweep(duration, cleared, failures, err)
}

// RecordRosterReload records a roster reload attempt.
func (c *Collector) RecordRosterReload(err error) {
	if !c.config.Enabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.rosterReloads.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records a served HTTP request. Routes beyond the
// cardinality limit are folded into "other".
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	if !c.cardinalityLimiter.Allow(method + " " + route) {
		route = "other"
	}
	c.httpMetrics.RecordRequest(method, route, status, duration)
}

// RegisterGaugeFunc registers a gauge whose value is read from fn at scrape
// time, e.g. the number of records in the store.
func (c *Collector) RegisterGaugeFunc(name, help string, fn func() float64) error {
	return c.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Name:      name,
			Help:      help,
		},
		fn,
	))
}

// Handler serves the collector's registry in the Prometheus exposition
// format, negotiating OpenMetrics when the scraper asks for it.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
