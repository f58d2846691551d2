package hnsw

import (
	"time"

	"github.com/arborist-labs/hnswgraph/pkg/metrics"
)

// MetricsReporter records insert and search events as Prometheus
// observations via the Record* helpers on metrics.Registry. Individual
// OnGraphChangedRetry events are not recorded; retries are counted from
// OnSearchCompleted's retries argument.
type MetricsReporter struct {
	registry *metrics.Registry
}

// NewMetricsReporter wraps registry as an EventReporter. A nil registry
// defaults to metrics.DefaultRegistry().
func NewMetricsReporter(registry *metrics.Registry) *MetricsReporter {
	if registry == nil {
		registry = metrics.DefaultRegistry()
	}
	return &MetricsReporter{registry: registry}
}

func (r *MetricsReporter) OnItemsAdded(count int, elapsed time.Duration) {
	r.registry.RecordInsert(count, elapsed)
}

func (r *MetricsReporter) OnSearchCompleted(k, _ int, elapsed time.Duration, retries int) {
	r.registry.RecordSearch(k, elapsed, retries, false)
}

func (r *MetricsReporter) OnGraphChangedRetry(int) {}
