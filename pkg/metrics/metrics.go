package metrics

import (
	"runtime"
	"time"
)

// RecordMerge records a merge attempt with its duration
func (r *Registry) RecordMerge(status string, duration time.Duration) {
	r.MergesTotal.WithLabelValues(status).Inc()
	if status == "success" {
		r.MergeDuration.Observe(duration.Seconds())
	}
	if status == "stale" {
		r.StaleMerges.Inc()
	}
}

// SetGraphSize updates the live model gauges
func (r *Registry) SetGraphSize(artists, labels, intermediates, relations, splines int) {
	r.GraphNodes.WithLabelValues("artist").Set(float64(artists))
	r.GraphNodes.WithLabelValues("label").Set(float64(labels))
	r.GraphNodes.WithLabelValues("intermediate").Set(float64(intermediates))
	r.GraphEdges.WithLabelValues("relation").Set(float64(relations))
	r.GraphEdges.WithLabelValues("spline").Set(float64(splines))
}

// RecordPrune records the outcome of a prune schedule
func (r *Registry) RecordPrune(passes, nodes, edges int) {
	r.PrunePasses.Add(float64(passes))
	r.PrunedNodes.Add(float64(nodes))
	r.PrunedEdges.Add(float64(edges))
}

// RecordTick records one simulation step
func (r *Registry) RecordTick(alpha float64, duration time.Duration) {
	r.TicksTotal.Inc()
	r.TickDuration.Observe(duration.Seconds())
	r.Alpha.Set(alpha)
}

// SetRunning flips the running gauge
func (r *Registry) SetRunning(running bool) {
	if running {
		r.SimulationsRunning.Set(1)
	} else {
		r.SimulationsRunning.Set(0)
	}
}

// RecordSimulationEnd records how a simulation run finished
func (r *Registry) RecordSimulationEnd(outcome string) {
	r.SimulationRuns.WithLabelValues(outcome).Inc()
	r.SetRunning(false)
}

// RecordFrame records a published position frame
func (r *Registry) RecordFrame(rawBytes, compressedBytes int, err error) {
	if err != nil {
		r.FramesPublished.WithLabelValues("error").Inc()
		return
	}
	r.FramesPublished.WithLabelValues("success").Inc()
	r.FrameBytes.Observe(float64(compressedBytes))
	if rawBytes > 0 {
		r.FrameCompression.Observe(float64(compressedBytes) / float64(rawBytes))
	}
}

// UpdateSystemMetrics samples uptime, goroutines and memory
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.UptimeSeconds.Set(time.Since(r.startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
