package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records outcomes of per-line order dispatch batches.
type DispatchMetrics struct {
	duration *prometheus.HistogramVec
	lines    *prometheus.CounterVec
	batches  *prometheus.CounterVec
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_dispatch_duration_seconds",
		Help:    "Duration of order dispatch batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	lines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_dispatch_lines_total",
		Help: "Cart lines dispatched, by per-line outcome.",
	}, []string{"outcome"})
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_dispatch_batches_total",
		Help: "Dispatch batches executed, by aggregate outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, lines, batches)
	return &DispatchMetrics{
		duration: duration,
		lines:    lines,
		batches:  batches,
	}
}

// ObserveBatch records the duration of a dispatch batch with its outcome.
func (d *DispatchMetrics) ObserveBatch(outcome string, duration time.Duration) {
	if d == nil || d.duration == nil {
		return
	}
	d.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
	d.batches.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncLine increments the per-line counter for the given outcome.
func (d *DispatchMetrics) IncLine(outcome string) {
	if d == nil || d.lines == nil {
		return
	}
	d.lines.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(outcome string) string {
	if outcome == "" {
		return "unknown"
	}
	return outcome
}
