package engine

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/template"
)

// MetricsConfig configures the Prometheus metrics of an Engine.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "splice").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for resolve duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures Metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "splice",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors an Engine reports to. A nil
// *Metrics records nothing.
type Metrics struct {
	resolvesTotal   *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	nodesTotal      *prometheus.CounterVec
	unconsumedTotal prometheus.Counter
	templatesLoaded prometheus.Gauge
	batchesInFlight prometheus.Gauge
}

// NewMetrics registers the engine collectors.
//
// Metrics collected:
//   - splice_resolves_total: Counter of Resolve calls by result ("ok" or an error code)
//   - splice_resolve_duration_seconds: Histogram of Resolve duration
//   - splice_nodes_total: Counter of located nodes by reconcile outcome
//   - splice_unconsumed_slots_total: Counter of slot buckets nobody consumed
//   - splice_templates_loaded: Gauge of templates in the registry
//   - splice_batches_in_flight: Gauge of running ResolveBatch calls
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		resolvesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolves_total",
			Help:        "Total number of instances resolved, by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		resolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolve_duration_seconds",
			Help:        "Duration of reconciliation plus slot projection in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		nodesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_total",
			Help:        "Total number of located nodes visited, by reconcile outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		unconsumedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "unconsumed_slots_total",
			Help:        "Total number of slot buckets left unconsumed after projection",
			ConstLabels: config.ConstLabels,
		}),

		templatesLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "templates_loaded",
			Help:        "Number of templates in the registry",
			ConstLabels: config.ConstLabels,
		}),

		batchesInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batches_in_flight",
			Help:        "Number of ResolveBatch calls currently running",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// SetTemplates records the number of loaded templates.
func (m *Metrics) SetTemplates(n int) {
	if m == nil {
		return
	}
	m.templatesLoaded.Set(float64(n))
}

func (m *Metrics) observe(stats template.Stats, unconsumed int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.resolvesTotal.WithLabelValues(resultLabel(err)).Inc()
	m.resolveDuration.Observe(d.Seconds())
	m.nodesTotal.WithLabelValues(template.Resolved.String()).Add(float64(stats.Resolved))
	m.nodesTotal.WithLabelValues(template.PassedThrough.String()).Add(float64(stats.PassedThrough))
	m.unconsumedTotal.Add(float64(unconsumed))
}

func (m *Metrics) batchStarted() {
	if m != nil {
		m.batchesInFlight.Inc()
	}
}

func (m *Metrics) batchDone() {
	if m != nil {
		m.batchesInFlight.Dec()
	}
}

// resultLabel maps an error to a bounded label value.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	if code := errors.CodeOf(err); code != "" {
		return code
	}
	return "error"
}
