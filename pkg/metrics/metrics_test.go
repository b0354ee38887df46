package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.MergesTotal == nil || r.TicksTotal == nil || r.FramesPublished == nil || r.UptimeSeconds == nil {
		t.Error("Metrics not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordMerge(t *testing.T) {
	r := NewRegistry()

	r.RecordMerge("success", 2*time.Millisecond)
	r.RecordMerge("success", 3*time.Millisecond)
	r.RecordMerge("rejected", 0)
	r.RecordMerge("stale", 0)

	if got := counterValue(t, r.MergesTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("success merges = %v, want 2", got)
	}
	if got := counterValue(t, r.MergesTotal.WithLabelValues("rejected")); got != 1 {
		t.Errorf("rejected merges = %v, want 1", got)
	}
	if got := counterValue(t, r.StaleMerges); got != 1 {
		t.Errorf("stale merges = %v, want 1", got)
	}

	var metric dto.Metric
	if err := r.MergeDuration.Write(&metric); err != nil {
		t.Fatalf("Failed to write histogram: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("merge duration samples = %v, want 2", metric.Histogram.GetSampleCount())
	}
}

func TestSetGraphSize(t *testing.T) {
	r := NewRegistry()
	r.SetGraphSize(10, 2, 7, 8, 14)

	if got := gaugeValue(t, r.GraphNodes.WithLabelValues("intermediate")); got != 7 {
		t.Errorf("intermediate gauge = %v, want 7", got)
	}
	if got := gaugeValue(t, r.GraphEdges.WithLabelValues("spline")); got != 14 {
		t.Errorf("spline gauge = %v, want 14", got)
	}
}

func TestRecordPruneAndTicks(t *testing.T) {
	r := NewRegistry()

	r.RecordPrune(2, 140, 300)
	r.RecordTick(0.97, time.Millisecond)
	r.RecordTick(0.94, time.Millisecond)
	r.SetRunning(true)

	if got := counterValue(t, r.PrunedNodes); got != 140 {
		t.Errorf("pruned nodes = %v, want 140", got)
	}
	if got := counterValue(t, r.TicksTotal); got != 2 {
		t.Errorf("ticks = %v, want 2", got)
	}
	if got := gaugeValue(t, r.Alpha); got != 0.94 {
		t.Errorf("alpha = %v, want 0.94", got)
	}
	if got := gaugeValue(t, r.SimulationsRunning); got != 1 {
		t.Errorf("running = %v, want 1", got)
	}

	r.RecordSimulationEnd("converged")
	if got := gaugeValue(t, r.SimulationsRunning); got != 0 {
		t.Errorf("running after end = %v, want 0", got)
	}
	if got := counterValue(t, r.SimulationRuns.WithLabelValues("converged")); got != 1 {
		t.Errorf("converged runs = %v, want 1", got)
	}
}

func TestRecordFrame(t *testing.T) {
	r := NewRegistry()

	r.RecordFrame(1000, 250, nil)
	r.RecordFrame(1000, 0, errors.New("socket closed"))

	if got := counterValue(t, r.FramesPublished.WithLabelValues("success")); got != 1 {
		t.Errorf("published = %v, want 1", got)
	}
	if got := counterValue(t, r.FramesPublished.WithLabelValues("error")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}

	var metric dto.Metric
	if err := r.FrameCompression.Write(&metric); err != nil {
		t.Fatalf("Failed to write histogram: %v", err)
	}
	if metric.Histogram.GetSampleSum() != 0.25 {
		t.Errorf("compression ratio sum = %v, want 0.25", metric.Histogram.GetSampleSum())
	}
}

func TestUpdateSystemMetrics(t *testing.T) {
	r := NewRegistry()
	r.UpdateSystemMetrics()

	if got := gaugeValue(t, r.GoRoutines); got < 1 {
		t.Errorf("goroutines = %v, want >= 1", got)
	}
	if got := gaugeValue(t, r.MemorySysBytes); got <= 0 {
		t.Errorf("memory sys bytes = %v, want > 0", got)
	}
}

func TestMetricNamesArePrefixed(t *testing.T) {
	r := NewRegistry()
	r.RecordMerge("success", time.Millisecond)
	r.SetGraphSize(1, 0, 0, 0, 0)

	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("No metric families gathered")
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "discograph_layout_") {
			t.Errorf("Metric %q lacks the discograph_layout_ prefix", mf.GetName())
		}
	}
}
