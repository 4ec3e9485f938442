// Package metrics exports the engine's scheduler activity as Prometheus
// collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/weft/internal/engine"
)

const (
	namespace = "weft"
	subsystem = "scheduler"
)

// Collector implements engine.Metrics.
type Collector struct {
	units     prometheus.Counter
	yields    prometheus.Counter
	commits   prometheus.Counter
	abandoned prometheus.Counter
	failures  *prometheus.CounterVec
	effects   *prometheus.CounterVec
	passUnits prometheus.Histogram
}

var _ engine.Metrics = (*Collector)(nil)

// New creates a Collector and registers it with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		units: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "units_total",
			Help:      "Units of work performed",
		}),
		yields: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "yields_total",
			Help:      "Ticks that yielded with work remaining",
		}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commits_total",
			Help:      "Passes committed to the host",
		}),
		abandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "abandoned_passes_total",
			Help:      "In-flight passes replaced by a newer request",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failed_passes_total",
			Help:      "Passes dropped on error, by error code",
		}, []string{"code"}),
		effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "effects_total",
			Help:      "Committed effects by kind",
		}, []string{"effect"}),
		passUnits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pass_units",
			Help:      "Units of work per committed pass",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	for _, col := range []prometheus.Collector{
		c.units, c.yields, c.commits, c.abandoned, c.failures, c.effects, c.passUnits,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// UnitDone implements engine.Metrics.
func (c *Collector) UnitDone() { c.units.Inc() }

// Yielded implements engine.Metrics.
func (c *Collector) Yielded() { c.yields.Inc() }

// Abandoned implements engine.Metrics.
func (c *Collector) Abandoned() { c.abandoned.Inc() }

// Failed implements engine.Metrics.
func (c *Collector) Failed(code engine.PassErrorCode) {
	c.failures.WithLabelValues(string(code)).Inc()
}

// Committed implements engine.Metrics.
func (c *Collector) Committed(rec engine.CommitRecord) {
	c.commits.Inc()
	c.passUnits.Observe(float64(rec.Units))
	for _, e := range rec.Effects {
		c.effects.WithLabelValues(e.Effect.String()).Inc()
	}
}
