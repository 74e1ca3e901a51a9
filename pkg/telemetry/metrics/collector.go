package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus metrics for the configuration
// framework: apply cycles, parse activity, module registration and
// shutdowns. All recording methods are safe on a nil *Collector, so
// components that treat metrics as optional can call them
// unconditionally.
type Collector struct {
	registry *prometheus.Registry

	appliesTotal  *prometheus.CounterVec
	applyDuration prometheus.Histogram
	shutdowns     prometheus.Counter

	entriesParsed prometheus.Counter
	parseErrors   prometheus.Counter

	modulesRegistered prometheus.Gauge
	running           prometheus.Gauge

	controlEvents *prometheus.CounterVec
}

// NewCollector creates a collector and registers its metrics with
// registry. A nil registry gets a fresh private one; namespace falls
// back to "tempesta".
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "tempesta"
	}

	c := &Collector{
		registry: registry,

		appliesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cfg",
				Name:      "applies_total",
				Help:      "Configuration apply cycles by outcome",
			},
			[]string{"outcome"},
		),

		applyDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "cfg",
				Name:      "apply_duration_seconds",
				Help:      "Duration of configuration apply cycles",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),

		shutdowns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cfg",
				Name:      "shutdowns_total",
				Help:      "Completed shutdown cycles",
			},
		),

		entriesParsed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cfg",
				Name:      "entries_parsed_total",
				Help:      "Top-level configuration entries dispatched to modules",
			},
		),

		parseErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cfg",
				Name:      "parse_errors_total",
				Help:      "Apply cycles that failed while parsing or validating",
			},
		),

		modulesRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cfg",
				Name:      "modules_registered",
				Help:      "Modules currently registered",
			},
		),

		running: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cfg",
				Name:      "running",
				Help:      "Whether a configuration is live (1) or stopped (0)",
			},
		),

		controlEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "control",
				Name:      "events_total",
				Help:      "State transitions requested through the control channel",
			},
			[]string{"event"},
		),
	}

	registry.MustRegister(
		c.appliesTotal,
		c.applyDuration,
		c.shutdowns,
		c.entriesParsed,
		c.parseErrors,
		c.modulesRegistered,
		c.running,
		c.controlEvents,
	)

	return c
}

// ObserveApply records one apply cycle with its outcome ("success" or
// "failure") and duration.
func (c *Collector) ObserveApply(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.appliesTotal.WithLabelValues(outcome).Inc()
	c.applyDuration.Observe(d.Seconds())
	if outcome == "success" {
		c.running.Set(1)
	}
}

// ObserveShutdown records one completed shutdown cycle.
func (c *Collector) ObserveShutdown() {
	if c == nil {
		return
	}
	c.shutdowns.Inc()
	c.running.Set(0)
}

// AddEntriesParsed adds to the dispatched-entry counter.
func (c *Collector) AddEntriesParsed(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.entriesParsed.Add(float64(n))
}

// IncParseErrors counts an apply cycle failed by a parse, validation
// or cardinality error.
func (c *Collector) IncParseErrors() {
	if c == nil {
		return
	}
	c.parseErrors.Inc()
}

// SetModulesRegistered tracks the current module count.
func (c *Collector) SetModulesRegistered(n int) {
	if c == nil {
		return
	}
	c.modulesRegistered.Set(float64(n))
}

// IncControlEvent counts one control-channel transition request
// ("start" or "stop").
func (c *Collector) IncControlEvent(event string) {
	if c == nil {
		return
	}
	c.controlEvents.WithLabelValues(event).Inc()
}

// Registry returns the Prometheus registry backing this collector, for
// mounting a scrape endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//	    collector.Registry(),
//	    promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}
