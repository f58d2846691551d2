package hnsw

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/arborist-labs/hnswgraph/pkg/validation"
)

// maxGraphChangedRetries bounds KnnSearch's retry loop when a concurrent
// writer invalidates an in-flight read (see the design tension note on the
// version counter: this matters only for callers driving GraphEngine
// directly, below the facade's RWMutex).
const maxGraphChangedRetries = 1024

// Result is a single K-NN-SEARCH hit.
type Result[T any, D constraints.Ordered] struct {
	ID       int
	Item     T
	Distance D
}

// ProgressFunc is an optional callback invoked after each item lands during
// AddItems, reporting (completed, total).
type ProgressFunc func(completed, total int)

// GraphEngine owns a core arena and orchestrates INSERT, REMOVE, local
// repair, and K-NN-SEARCH on top of it. It does no locking of its own: the
// facade (pkg/smallworld) serializes writers against readers with a
// sync.RWMutex; GraphEngine's own version-counter re-validation exists for
// callers that drive it directly.
type GraphEngine[T any, D constraints.Ordered] struct {
	core     *core[T, D]
	rng      RNG
	reporter EventReporter
	pool     sync.Pool
}

// NewGraphEngine constructs an empty graph. A nil rng defaults to
// NewSystemRNG; a nil reporter defaults to NopReporter.
func NewGraphEngine[T any, D constraints.Ordered](params Parameters, distance DistanceFunc[T, D], rng RNG, reporter EventReporter) *GraphEngine[T, D] {
	if rng == nil {
		rng = NewSystemRNG()
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &GraphEngine[T, D]{
		core:     newCore(params, distance),
		rng:      rng,
		reporter: reporter,
	}
}

// Len returns the number of live items in the graph.
func (ge *GraphEngine[T, D]) Len() int {
	return ge.core.len()
}

// SetReporter swaps the EventReporter used for subsequent events, leaving
// the arena untouched. A nil reporter installs NopReporter.
func (ge *GraphEngine[T, D]) SetReporter(reporter EventReporter) {
	if reporter == nil {
		reporter = NopReporter{}
	}
	ge.reporter = reporter
}

// GetItem returns the item bound to id, or an error if id is not live.
func (ge *GraphEngine[T, D]) GetItem(id int) (T, error) {
	if !ge.core.live(id) {
		var zero T
		return zero, opErrorID("GetItem", id, ErrInvalidOperation)
	}
	return ge.core.getItem(id), nil
}

func (ge *GraphEngine[T, D]) acquireSearcher() *layerSearcher[T, D] {
	if v := ge.pool.Get(); v != nil {
		return v.(*layerSearcher[T, D])
	}
	return newLayerSearcher[T, D](ge.core.params.ConstructionPruning)
}

func (ge *GraphEngine[T, D]) releaseSearcher(ls *layerSearcher[T, D]) {
	ge.pool.Put(ls)
}

// sampleLevel draws a node's maxLayer via the standard HNSW exponential
// decay: floor(-ln(u) * levelLambda), u uniform in (0, 1].
func sampleLevel(rng RNG, levelLambda float64) int {
	return int(math.Floor(-math.Log(rng.Float64()) * levelLambda))
}

// AddItems runs INSERT (§4.7) for each item in order, returning their
// newly-assigned arena ids. On error, the ids already assigned are
// returned alongside it so a caller can tell how far the batch progressed.
func (ge *GraphEngine[T, D]) AddItems(ctx context.Context, items []T, progress ProgressFunc) ([]int, error) {
	if err := validation.ValidateBatchSize(len(items)); err != nil {
		return nil, opError("AddItems", err)
	}

	ids := make([]int, 0, len(items))
	start := time.Now()

	for i, it := range items {
		select {
		case <-ctx.Done():
			return ids, ctx.Err()
		default:
		}

		id, err := ge.insertOne(ctx, it)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
		if progress != nil {
			progress(i+1, len(items))
		}
	}

	ge.reporter.OnItemsAdded(len(items), time.Since(start))
	return ids, nil
}

// insertOne implements §4.7 steps 1-5 for a single item.
func (ge *GraphEngine[T, D]) insertOne(ctx context.Context, it T) (int, error) {
	layer := sampleLevel(ge.rng, ge.core.params.LevelLambda)

	if ge.core.entryPoint == noEntryPoint {
		n := ge.core.allocate(it, layer)
		ge.core.entryPoint = n.id
		ge.core.bumpVersion()
		return n.id, nil
	}

	oldEP := ge.core.entryPoint
	oldEPNode := ge.core.getNode(oldEP)
	oldEPLayer := oldEPNode.maxLayer

	descentCosts := newTravelingCosts(it, ge.core.distance, ge.core.items)
	ep := coarseDescent(ge.core, descentCosts, oldEP, oldEPLayer, layer)

	n := ge.core.allocate(it, layer)
	newID := n.id
	costs := newTravelingCosts(it, ge.core.distance, ge.core.items)

	minLayer := oldEPLayer
	if layer < minLayer {
		minLayer = layer
	}

	curEP := ep
	for l := minLayer; l >= 0; l-- {
		ls := ge.acquireSearcher()
		candidates, err := ls.searchLayer(ctx, ge.core, curEP, costs, ge.core.params.ConstructionPruning, l, nil, ge.core.currentVersion())
		ge.releaseSearcher(ls)
		if err != nil {
			ge.core.rollbackAllocation(newID)
			return 0, opErrorID("AddItems", newID, err)
		}

		picks := ge.core.selector.selectBestForConnecting(ge.core, candidates, ge.core.params.mForLayer(l), l, costs)
		for _, pid := range picks {
			ge.core.bumpVersion()
			ge.core.Connect(newID, pid, l)
			ge.core.Connect(pid, newID, l)
		}
		if len(picks) > 0 {
			curEP = picks[0]
		}
	}

	if layer > oldEPLayer {
		ge.core.entryPoint = newID
	}

	return newID, nil
}

// RemoveItem implements REMOVE (§4.8): re-seats the entry point if needed,
// unlinks every in-edge, triggers local repair on any peer whose degree
// drops below half its layer bound, then tombstones the slot.
func (ge *GraphEngine[T, D]) RemoveItem(id int) error {
	if !ge.core.live(id) {
		return opErrorID("RemoveItem", id, ErrInvalidOperation)
	}
	node := ge.core.getNode(id)

	wasEntryPoint := id == ge.core.entryPoint
	replacement := noEntryPoint
	if wasEntryPoint {
		for l := node.maxLayer; l >= 0 && replacement == noEntryPoint; l-- {
			for _, nb := range node.outAt(l) {
				if ge.core.live(nb) {
					replacement = nb
					break
				}
			}
		}
	}

	for l := 0; l <= node.maxLayer; l++ {
		inNeighbors := append([]int(nil), node.inConnections[l]...)
		for _, p := range inNeighbors {
			ge.core.bumpVersion()
			ge.core.Disconnect(p, id, l)
			if peer := ge.core.getNode(p); peer != nil {
				if len(peer.connections[l]) < ge.core.params.mForLayer(l)/2 {
					ge.localRepair(p, l)
				}
			}
		}

		// Hedge against invariant drift: drop any stale reverse edge a
		// surviving out-neighbor might still hold toward this node.
		for _, nb := range node.outAt(l) {
			if peer := ge.core.getNode(nb); peer != nil {
				peer.inConnections[l] = removeFromSlice(peer.inConnections[l], id)
			}
		}
		node.connections[l] = node.connections[l][:0]
		node.inConnections[l] = node.inConnections[l][:0]
	}

	ge.core.bumpVersion()
	node.tombstoned = true
	ge.core.free = append(ge.core.free, id)

	if wasEntryPoint {
		if replacement == noEntryPoint {
			replacement = ge.core.maxLiveLayer()
		}
		ge.core.entryPoint = replacement
	}

	return nil
}

// localRepair implements §4.9 for a single (nodeId, layer) pair: descend to
// layer, search it, and reconnect nodeId to the fresh best neighbors found.
// Best-effort: a concurrent-modification error aborts this repair pass
// silently rather than failing the remove that triggered it.
func (ge *GraphEngine[T, D]) localRepair(nodeID, layer int) {
	n := ge.core.getNode(nodeID)
	if n == nil || ge.core.entryPoint == noEntryPoint {
		return
	}

	costs := newTravelingCosts(ge.core.getItem(nodeID), ge.core.distance, ge.core.items)
	epNode := ge.core.getNode(ge.core.entryPoint)
	if epNode == nil {
		return
	}
	descended := coarseDescent(ge.core, costs, ge.core.entryPoint, epNode.maxLayer, layer)

	ls := ge.acquireSearcher()
	candidates, err := ls.searchLayer(context.Background(), ge.core, descended, costs, ge.core.params.ConstructionPruning, layer, nil, ge.core.currentVersion())
	ge.releaseSearcher(ls)
	if err != nil {
		return
	}

	picks := ge.core.selector.selectBestForConnecting(ge.core, candidates, ge.core.params.mForLayer(layer), layer, costs)
	for _, pid := range picks {
		if pid == nodeID || containsID(n.outAt(layer), pid) {
			continue
		}
		ge.core.bumpVersion()
		ge.core.Connect(nodeID, pid, layer)
		ge.core.Connect(pid, nodeID, layer)
	}
}

// KnnSearch implements K-NN-SEARCH (§4.10): coarse-descend to layer 0 and
// run one bounded beam search there, retrying up to maxGraphChangedRetries
// times if a concurrent writer invalidates the read.
func (ge *GraphEngine[T, D]) KnnSearch(ctx context.Context, query T, k int, filter filterFunc[T]) ([]Result[T, D], error) {
	if k <= 0 {
		return nil, opError("KnnSearch", fmt.Errorf("k must be positive, got %d", k))
	}
	if ge.core.entryPoint == noEntryPoint {
		return nil, nil
	}

	ef := ge.core.params.searchEf(k)
	costs := newTravelingCosts(query, ge.core.distance, ge.core.items)
	start := time.Now()

	var found []item[D]
	retries := 0

	for attempt := 0; attempt < maxGraphChangedRetries; attempt++ {
		version := ge.core.currentVersion()
		ep := ge.core.entryPoint
		epNode := ge.core.getNode(ep)
		if epNode == nil {
			return nil, nil
		}
		descended := coarseDescent(ge.core, costs, ep, epNode.maxLayer, 0)

		ls := ge.acquireSearcher()
		result, err := ls.searchLayer(ctx, ge.core, descended, costs, ef, 0, filter, version)
		ge.releaseSearcher(ls)

		if err == nil {
			found = result
			break
		}
		if errors.Is(err, ErrGraphChanged) {
			retries++
			ge.reporter.OnGraphChangedRetry(retries)
			continue
		}
		return nil, opError("KnnSearch", err)
	}

	if found == nil && retries >= maxGraphChangedRetries {
		return nil, opError("KnnSearch", ErrRetriesExhausted)
	}

	if len(found) > k {
		found = found[:k]
	}

	results := make([]Result[T, D], len(found))
	for i, it := range found {
		results[i] = Result[T, D]{ID: it.id, Item: ge.core.getItem(it.id), Distance: it.dist}
	}

	ge.reporter.OnSearchCompleted(k, ef, time.Since(start), retries)
	return results, nil
}
