package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBroadcastMetrics() {
	r.FramesPublished = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "discograph_layout_frames_published_total",
			Help: "Position frames handed to the transport",
		},
		[]string{"status"}, // success, error
	)

	r.FrameBytes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discograph_layout_frame_bytes",
			Help:    "Size of compressed position frames",
			Buckets: prometheus.ExponentialBuckets(256, 2, 10),
		},
	)

	r.FrameCompression = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discograph_layout_frame_compression_ratio",
			Help:    "Compressed size divided by raw size",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.8, 1.0},
		},
	)
}
