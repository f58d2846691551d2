package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initVectorMetrics() {
	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hnsw_graph_nodes_total",
			Help: "Total number of live nodes in the graph",
		},
	)

	r.GraphEntryPointLayer = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hnsw_graph_entry_point_layer",
			Help: "Layer of the current entry point node",
		},
	)

	r.InsertDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hnsw_insert_duration_seconds",
			Help:    "AddItems call duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 5.0},
		},
	)

	r.InsertItemsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hnsw_insert_items_total",
			Help: "Total number of items inserted",
		},
	)

	r.SearchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hnsw_search_duration_seconds",
			Help:    "KnnSearch call duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"cancelled"},
	)

	r.SearchResultsReturned = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hnsw_search_results_returned",
			Help:    "Number of results returned per KnnSearch call",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		},
	)

	r.SearchGraphChangedRetries = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hnsw_search_graph_changed_retries_total",
			Help: "Total number of GraphChanged retries across all searches",
		},
	)

	r.RemoveDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hnsw_remove_duration_seconds",
			Help:    "RemoveItem call duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		},
	)

	r.RemoveLocalRepairsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hnsw_remove_local_repairs_total",
			Help: "Total number of local-repair passes triggered by RemoveItem",
		},
	)

	r.SerializeBytesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hnsw_serialize_bytes_total",
			Help: "Total bytes written by SerializeGraph",
		},
	)

	r.DeserializeDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hnsw_deserialize_duration_seconds",
			Help:    "DeserializeGraph call duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 1.0, 10.0},
		},
	)
}
