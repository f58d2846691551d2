package hnsw

import "time"

// EventReporter receives observational callbacks from the engine. All
// methods must return promptly: they are invoked while the caller still
// holds whatever lock the facade acquired for the operation.
type EventReporter interface {
	// OnItemsAdded reports a completed AddItems call.
	OnItemsAdded(count int, elapsed time.Duration)
	// OnSearchCompleted reports a completed KnnSearch call.
	OnSearchCompleted(k, ef int, elapsed time.Duration, retries int)
	// OnGraphChangedRetry reports a single retry within the K-NN-SEARCH
	// retry loop, numbered from 1.
	OnGraphChangedRetry(attempt int)
}

// NopReporter discards every event; it is the default EventReporter.
type NopReporter struct{}

func (NopReporter) OnItemsAdded(int, time.Duration)            {}
func (NopReporter) OnSearchCompleted(int, int, time.Duration, int) {}
func (NopReporter) OnGraphChangedRetry(int)                    {}

// MultiReporter fans out every event to a set of reporters in order.
type MultiReporter struct {
	reporters []EventReporter
}

// NewMultiReporter composes several reporters into one.
func NewMultiReporter(reporters ...EventReporter) *MultiReporter {
	return &MultiReporter{reporters: reporters}
}

func (m *MultiReporter) OnItemsAdded(count int, elapsed time.Duration) {
	for _, r := range m.reporters {
		r.OnItemsAdded(count, elapsed)
	}
}

func (m *MultiReporter) OnSearchCompleted(k, ef int, elapsed time.Duration, retries int) {
	for _, r := range m.reporters {
		r.OnSearchCompleted(k, ef, elapsed, retries)
	}
}

func (m *MultiReporter) OnGraphChangedRetry(attempt int) {
	for _, r := range m.reporters {
		r.OnGraphChangedRetry(attempt)
	}
}
