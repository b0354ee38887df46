package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the layout core
type Registry struct {
	// Graph Metrics
	MergesTotal    *prometheus.CounterVec
	MergeDuration  prometheus.Histogram
	GraphNodes     *prometheus.GaugeVec
	GraphEdges     *prometheus.GaugeVec
	StaleMerges    prometheus.Counter
	PageChanges    prometheus.Counter
	PrunePasses    prometheus.Counter
	PrunedNodes    prometheus.Counter
	PrunedEdges    prometheus.Counter

	// Simulation Metrics
	TicksTotal         prometheus.Counter
	TickDuration       prometheus.Histogram
	Alpha              prometheus.Gauge
	SimulationRuns     *prometheus.CounterVec
	SimulationsRunning prometheus.Gauge
	Bodies             prometheus.Gauge

	// Broadcast Metrics
	FramesPublished  *prometheus.CounterVec
	FrameBytes       prometheus.Histogram
	FrameCompression prometheus.Histogram

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry  *prometheus.Registry
	startTime time.Time
	mu        sync.Mutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}

	r.initGraphMetrics()
	r.initSimulationMetrics()
	r.initBroadcastMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
