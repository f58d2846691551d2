package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Graph engine metrics
	GraphNodesTotal           prometheus.Gauge
	GraphEntryPointLayer      prometheus.Gauge
	InsertDuration            prometheus.Histogram
	InsertItemsTotal          prometheus.Counter
	SearchDuration            *prometheus.HistogramVec
	SearchResultsReturned     prometheus.Histogram
	SearchGraphChangedRetries prometheus.Counter
	RemoveDuration            prometheus.Histogram
	RemoveLocalRepairsTotal   prometheus.Counter
	SerializeBytesTotal       prometheus.Counter
	DeserializeDuration       prometheus.Histogram

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
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
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initVectorMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
