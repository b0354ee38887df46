package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.TicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "discograph_layout_ticks_total",
			Help: "Total number of simulation ticks",
		},
	)

	r.TickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discograph_layout_tick_duration_seconds",
			Help:    "Duration of a simulation tick in seconds",
			Buckets: []float64{.00005, .0001, .0005, .001, .005, .01, .05},
		},
	)

	r.Alpha = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "discograph_layout_alpha",
			Help: "Current simulation alpha",
		},
	)

	r.SimulationRuns = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "discograph_layout_simulation_runs_total",
			Help: "Simulation runs by how they ended",
		},
		[]string{"outcome"}, // converged, stopped, unstable
	)

	r.SimulationsRunning = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "discograph_layout_simulation_running",
			Help: "Whether the simulation is running (1=yes, 0=no)",
		},
	)

	r.Bodies = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "discograph_layout_simulation_bodies",
			Help: "Bodies bound to the simulation for the current page",
		},
	)
}
