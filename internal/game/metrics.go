package game

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"cityblast/internal/remesh"
)

// Metrics groups the session collectors with the scheduler's. A nil
// *Metrics records nothing.
type Metrics struct {
	Remesh *remesh.Metrics

	ticks       prometheus.Counter
	detonations prometheus.Counter
	breaks      prometheus.Counter
	simSeconds  prometheus.Gauge
	frameDelta  prometheus.Histogram
}

// NewMetrics registers session and scheduler collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	rm, err := remesh.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	m := &Metrics{
		Remesh: rm,
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citysim",
			Subsystem: "session",
			Name:      "ticks_total",
			Help:      "Simulation ticks executed.",
		}),
		detonations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citysim",
			Subsystem: "session",
			Name:      "detonations_total",
			Help:      "Agent detonations.",
		}),
		breaks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citysim",
			Subsystem: "session",
			Name:      "blocks_broken_total",
			Help:      "Blocks removed by the player's break action.",
		}),
		simSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "citysim",
			Subsystem: "session",
			Name:      "sim_time_seconds",
			Help:      "Accumulated simulation clock.",
		}),
		frameDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "citysim",
			Subsystem: "session",
			Name:      "frame_delta_seconds",
			Help:      "Clamped frame delta handed to each tick.",
			Buckets:   []float64{0.004, 0.008, 0.016, 0.025, 0.033, 0.05},
		}),
	}
	for _, c := range []prometheus.Collector{m.ticks, m.detonations, m.breaks, m.simSeconds, m.frameDelta} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register session metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) remesh() *remesh.Metrics {
	if m == nil {
		return nil
	}
	return m.Remesh
}

func (m *Metrics) observeTick(report TickReport) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.simSeconds.Set(report.Now.Seconds())
	m.frameDelta.Observe(report.Delta.Seconds())
	if report.Agent.Detonated {
		m.detonations.Inc()
	}
	if report.Broke {
		m.breaks.Inc()
	}
}
