package remesh

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by the scheduler. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	queueDepth prometheus.Gauge
	rebuilt    prometheus.Counter
	skipped    prometheus.Counter
	enqueued   prometheus.Counter
	faces      prometheus.Histogram
}

// NewMetrics creates the scheduler collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "citysim",
			Subsystem: "remesh",
			Name:      "queue_depth",
			Help:      "Chunks waiting for a rebuild.",
		}),
		rebuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citysim",
			Subsystem: "remesh",
			Name:      "rebuilds_total",
			Help:      "Chunk geometry rebuilds performed.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citysim",
			Subsystem: "remesh",
			Name:      "skipped_total",
			Help:      "Queue entries dropped because the chunk was already clean or missing.",
		}),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citysim",
			Subsystem: "remesh",
			Name:      "enqueued_total",
			Help:      "Chunks added to the rebuild queue.",
		}),
		faces: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "citysim",
			Subsystem: "remesh",
			Name:      "faces_per_rebuild",
			Help:      "Quads emitted by each chunk rebuild.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.queueDepth, m.rebuilt, m.skipped, m.enqueued, m.faces} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register remesh metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) observeEnqueue() {
	if m == nil {
		return
	}
	m.enqueued.Inc()
}

func (m *Metrics) observeRebuild(faces int) {
	if m == nil {
		return
	}
	m.rebuilt.Inc()
	m.faces.Observe(float64(faces))
}

func (m *Metrics) observeSkip() {
	if m == nil {
		return
	}
	m.skipped.Inc()
}
