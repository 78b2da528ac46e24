package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/retree/pkg/recon"
)

// MetricsConfig configures the Prometheus exporter.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "retree").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics, e.g. to tell
	// several trees in one process apart.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for frame duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus exporter.
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

// WithBuckets sets the frame duration histogram buckets.
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
		Namespace: "retree",
		// Frames are expected to take well under a millisecond.
		Buckets:  []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		Registry: prometheus.DefaultRegisterer,
	}
}

// Metrics records frame statistics as Prometheus metrics. It implements
// recon.Observer.
type Metrics struct {
	frames   *prometheus.CounterVec
	duration prometheus.Histogram
	live     prometheus.Gauge
	inserted prometheus.Counter
	twins    prometheus.Counter
	pruned   prometheus.Counter
	dirty    prometheus.Counter
	cosmetic prometheus.Counter
}

// NewMetrics registers the frame metrics with the configured registry.
// Registering twice with the same registry and labels panics, like any
// promauto registration.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_total",
			Help:        "Total number of reconciliation frames finished",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frame_duration_seconds",
			Help:        "Duration of the declaration pass in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		live: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_nodes",
			Help:        "Number of live nodes after the last frame",
			ConstLabels: config.ConstLabels,
		}),

		inserted: counter("nodes_inserted_total", "Total number of nodes inserted into the table"),
		twins:    counter("twins_total", "Total number of same-frame duplicate keys resolved as twins"),
		pruned:   counter("nodes_pruned_total", "Total number of nodes pruned"),
		dirty:    counter("dirty_records_total", "Total number of dirty parent records"),
		cosmetic: counter("cosmetic_updates_total", "Total number of cosmetic updates"),
	}
}

// BeginFrame implements recon.Observer.
func (m *Metrics) BeginFrame(uint64) {}

// EndFrame implements recon.Observer.
func (m *Metrics) EndFrame(s recon.FrameStats) {
	status := "ok"
	if s.Err != nil {
		status = "misuse"
	}
	m.frames.WithLabelValues(status).Inc()
	m.duration.Observe(s.Duration.Seconds())
	m.live.Set(float64(s.Live))
	m.inserted.Add(float64(s.Inserted))
	m.twins.Add(float64(s.Twins))
	m.pruned.Add(float64(s.Pruned))
	m.dirty.Add(float64(s.Dirty))
	m.cosmetic.Add(float64(s.Cosmetic))
}
