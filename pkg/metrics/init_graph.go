package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.MergesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "discograph_layout_merges_total",
			Help: "Total number of payload merges",
		},
		[]string{"status"}, // success, rejected, stale
	)

	r.MergeDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discograph_layout_merge_duration_seconds",
			Help:    "Duration of merge plus prune in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "discograph_layout_graph_nodes",
			Help: "Live nodes in the graph model",
		},
		[]string{"kind"}, // artist, label, intermediate
	)

	r.GraphEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "discograph_layout_graph_edges",
			Help: "Live edges in the graph model",
		},
		[]string{"kind"}, // relation, spline
	)

	r.StaleMerges = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "discograph_layout_stale_merges_total",
			Help: "Payloads dropped because a newer request already completed",
		},
	)

	r.PageChanges = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "discograph_layout_page_changes_total",
			Help: "Total number of page selections",
		},
	)

	r.PrunePasses = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "discograph_layout_prune_passes_total",
			Help: "Prune passes that ran because the graph exceeded a ceiling",
		},
	)

	r.PrunedNodes = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "discograph_layout_pruned_nodes_total",
			Help: "Nodes removed by pruning, intermediates included",
		},
	)

	r.PrunedEdges = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "discograph_layout_pruned_edges_total",
			Help: "Edges removed by pruning, splines included",
		},
	)
}
