// Package smallworld provides SmallWorld, the concurrency-safe facade over
// pkg/hnsw's GraphEngine: a sync.RWMutex serializing mutations against
// concurrent reads, wrapping Build/AddItems/RemoveItem/KnnSearch/GetItem
// and graph (de)serialization.
package smallworld

import (
	"context"
	"io"
	"sync"

	"golang.org/x/exp/constraints"

	"github.com/arborist-labs/hnswgraph/pkg/hnsw"
)

// noopLocker satisfies sync.Locker by doing nothing, for threadSafe=false
// embeddings where the caller already serializes access.
type noopLocker struct{}

func (noopLocker) Lock()    {}
func (noopLocker) Unlock()  {}
func (noopLocker) RLock()   {}
func (noopLocker) RUnlock() {}

type rwLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// SmallWorld is the public entry point for embedding an HNSW index.
type SmallWorld[T any, D constraints.Ordered] struct {
	mu     rwLocker
	engine *hnsw.GraphEngine[T, D]

	params   hnsw.Parameters
	distance hnsw.DistanceFunc[T, D]
	rng      hnsw.RNG
	reporter hnsw.EventReporter
}

// Build constructs an empty index. threadSafe=false produces a facade whose
// lock methods are no-ops, for single-threaded embedding.
func Build[T any, D constraints.Ordered](
	distance hnsw.DistanceFunc[T, D],
	rng hnsw.RNG,
	parameters hnsw.Parameters,
	threadSafe bool,
) (*SmallWorld[T, D], error) {
	if err := parameters.Validate(); err != nil {
		return nil, err
	}

	reporter := hnsw.EventReporter(hnsw.NopReporter{})
	sw := &SmallWorld[T, D]{
		engine:   hnsw.NewGraphEngine(parameters, distance, rng, reporter),
		params:   parameters,
		distance: distance,
		rng:      rng,
		reporter: reporter,
	}
	if threadSafe {
		sw.mu = &sync.RWMutex{}
	} else {
		sw.mu = noopLocker{}
	}
	return sw, nil
}

// WithReporter swaps the engine's EventReporter in place, taking the write
// lock. It does not touch the underlying arena: existing items, edges, and
// the entry point are all preserved.
func (sw *SmallWorld[T, D]) WithReporter(reporter hnsw.EventReporter) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.reporter = reporter
	sw.engine.SetReporter(reporter)
}

// AddItems inserts items, taking the write lock for the whole batch so a
// concurrent search never observes a partially-inserted item.
func (sw *SmallWorld[T, D]) AddItems(ctx context.Context, items []T, progress hnsw.ProgressFunc) ([]int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.engine.AddItems(ctx, items, progress)
}

// RemoveItem tombstones id, taking the write lock.
func (sw *SmallWorld[T, D]) RemoveItem(id int) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.engine.RemoveItem(id)
}

// KnnSearch finds the k nearest items to query, taking the read lock.
func (sw *SmallWorld[T, D]) KnnSearch(ctx context.Context, query T, k int, filter func(T) bool) ([]hnsw.Result[T, D], error) {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.engine.KnnSearch(ctx, query, k, filter)
}

// GetItem returns the item bound to id, taking the read lock.
func (sw *SmallWorld[T, D]) GetItem(id int) (T, error) {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.engine.GetItem(id)
}

// Len reports the number of live items, taking the read lock.
func (sw *SmallWorld[T, D]) Len() int {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.engine.Len()
}

// SerializeGraph writes a consistent snapshot of the graph to w, taking the
// write lock so no concurrent mutation can interleave with the write.
func (sw *SmallWorld[T, D]) SerializeGraph(w io.Writer) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.engine.SerializeGraph(w)
}

// DeserializeGraph builds a new SmallWorld from the stream read from r,
// bound positionally to items. It takes no lock, since the facade it
// returns is not yet shared. The engine uses the parameters recorded in the
// stream; parameters is only stored on the returned facade.
func DeserializeGraph[T any, D constraints.Ordered](
	items []T,
	distance hnsw.DistanceFunc[T, D],
	rng hnsw.RNG,
	parameters hnsw.Parameters,
	r io.Reader,
	threadSafe bool,
) (*SmallWorld[T, D], error) {
	reporter := hnsw.EventReporter(hnsw.NopReporter{})
	engine, err := hnsw.DeserializeGraph(items, distance, rng, reporter, r)
	if err != nil {
		return nil, err
	}

	sw := &SmallWorld[T, D]{
		engine:   engine,
		params:   parameters,
		distance: distance,
		rng:      rng,
		reporter: reporter,
	}
	if threadSafe {
		sw.mu = &sync.RWMutex{}
	} else {
		sw.mu = noopLocker{}
	}
	return sw, nil
}
