package hnsw

import (
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// noEntryPoint is the sentinel entry-point id for an empty graph.
const noEntryPoint = -1

// core owns the node/item arena, the tombstone free-list, the selected
// NeighborSelector, and the structural version counter. It is the only
// type that ever mutates adjacency; everything above it (GraphEngine) only
// orchestrates calls into Connect/Disconnect.
type core[T any, D constraints.Ordered] struct {
	params   Parameters
	distance DistanceFunc[T, D]
	selector neighborSelector[T, D]

	nodes []*node
	items []T
	free  []int // LIFO stack of tombstoned ids available for reuse

	entryPoint int
	version    atomic.Uint64
}

func newCore[T any, D constraints.Ordered](params Parameters, distance DistanceFunc[T, D]) *core[T, D] {
	return &core[T, D]{
		params:     params,
		distance:   distance,
		selector:   newSelector[T, D](params.NeighborHeuristic),
		nodes:      make([]*node, 0, params.InitialItemsSize),
		items:      make([]T, 0, params.InitialItemsSize),
		entryPoint: noEntryPoint,
	}
}

func (c *core[T, D]) len() int {
	return len(c.nodes) - len(c.free)
}

func (c *core[T, D]) live(id int) bool {
	if id < 0 || id >= len(c.nodes) {
		return false
	}
	n := c.nodes[id]
	return n != nil && !n.tombstoned
}

func (c *core[T, D]) getNode(id int) *node {
	if id < 0 || id >= len(c.nodes) {
		return nil
	}
	return c.nodes[id]
}

func (c *core[T, D]) getItem(id int) T {
	return c.items[id]
}

func (c *core[T, D]) bumpVersion() {
	c.version.Add(1)
}

func (c *core[T, D]) currentVersion() uint64 {
	return c.version.Load()
}

// allocate reserves an arena slot and item binding for a new item,
// reusing a tombstoned id when one is available, and returns the new node.
func (c *core[T, D]) allocate(it T, maxLayer int) *node {
	if len(c.free) > 0 {
		id := c.free[len(c.free)-1]
		c.free = c.free[:len(c.free)-1]
		n := c.nodes[id]
		n.reset(id, maxLayer)
		c.items[id] = it
		return n
	}

	id := len(c.nodes)
	n := newNode(id, maxLayer)
	c.nodes = append(c.nodes, n)
	c.items = append(c.items, it)
	return n
}

// rollbackAllocation undoes allocate for an insert that failed before it
// could commit any edges, per the all-or-nothing insert policy.
func (c *core[T, D]) rollbackAllocation(id int) {
	if id == len(c.nodes)-1 {
		c.nodes = c.nodes[:id]
		c.items = c.items[:id]
		return
	}
	c.nodes[id].tombstoned = true
	c.free = append(c.free, id)
}

// Connect wires a -> b at layer, mirrors the edge into b's inConnections,
// and shrinks a's out-list back to the layer's degree bound if the new
// edge pushed it over, mirroring any resulting removal into the pruned
// peers' inConnections.
func (c *core[T, D]) Connect(aID, bID, layer int) {
	a := c.nodes[aID]
	a.connections[layer] = append(a.connections[layer], bID)
	b := c.nodes[bID]
	b.inConnections[layer] = append(b.inConnections[layer], aID)

	maxConn := c.params.mForLayer(layer)
	if len(a.connections[layer]) <= maxConn {
		return
	}

	costs := newTravelingCosts(c.items[aID], c.distance, c.items)
	candidates := make([]item[D], len(a.connections[layer]))
	for i, id := range a.connections[layer] {
		candidates[i] = item[D]{id: id, dist: costs.from(id)}
	}

	kept := c.selector.selectBestForConnecting(c, candidates, maxConn, layer, costs)
	keptSet := make(map[int]bool, len(kept))
	for _, id := range kept {
		keptSet[id] = true
	}

	for _, id := range a.connections[layer] {
		if !keptSet[id] {
			peer := c.nodes[id]
			peer.inConnections[layer] = removeFromSlice(peer.inConnections[layer], aID)
		}
	}

	a.connections[layer] = append(a.connections[layer][:0], kept...)
}

// Disconnect removes the edge a -> b at layer on both sides.
func (c *core[T, D]) Disconnect(aID, bID, layer int) {
	a := c.nodes[aID]
	b := c.nodes[bID]
	if layer <= a.maxLayer {
		a.connections[layer] = removeFromSlice(a.connections[layer], bID)
	}
	if layer <= b.maxLayer {
		b.inConnections[layer] = removeFromSlice(b.inConnections[layer], aID)
	}
}

// maxLiveLayer scans the arena and returns the id of the live node with the
// highest maxLayer (the lowest such id on ties), used to re-seat the entry
// point when it is removed. Returns noEntryPoint if the graph is empty.
func (c *core[T, D]) maxLiveLayer() int {
	best := noEntryPoint
	bestLayer := -1
	for id, n := range c.nodes {
		if n == nil || n.tombstoned {
			continue
		}
		if n.maxLayer > bestLayer {
			bestLayer = n.maxLayer
			best = id
		}
	}
	return best
}
