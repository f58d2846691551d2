package hnsw

import (
	"context"

	"golang.org/x/exp/constraints"
)

// filterFunc gates which items may enter a LayerSearcher's topCandidates
// result set; nil accepts everything.
type filterFunc[T any] func(T) bool

// layerSearcher performs SEARCH-LAYER. It owns its heap backing and
// visited bitset so a goroutine can reuse the same instance across many
// calls without allocating; see the sync.Pool in graph.go.
type layerSearcher[T any, D constraints.Ordered] struct {
	candidates    *binaryHeap[D] // min-heap: frontier, closest on top
	topCandidates *binaryHeap[D] // max-heap: result set, farthest on top, capped at ef
	visited       *visitedBitSet
}

func newLayerSearcher[T any, D constraints.Ordered](capacityHint int) *layerSearcher[T, D] {
	return &layerSearcher[T, D]{
		candidates:    newBinaryHeap[D](lessMin[D], capacityHint),
		topCandidates: newBinaryHeap[D](lessMax[D], capacityHint),
		visited:       newVisitedBitSet(capacityHint),
	}
}

func (s *layerSearcher[T, D]) reset() {
	s.candidates.Reset()
	s.topCandidates.Reset()
	s.visited.clear()
}

// searchLayer runs SEARCH-LAYER(entry, costs.destination, ef, layer, filter).
// It re-validates versionAtStart against c's live version before touching
// any node's adjacency; a mismatch returns ErrGraphChanged so the caller's
// retry loop can restart from a fresh snapshot.
func (s *layerSearcher[T, D]) searchLayer(
	ctx context.Context,
	c *core[T, D],
	entry int,
	costs *travelingCosts[T, D],
	ef, layer int,
	filter filterFunc[T],
	versionAtStart uint64,
) ([]item[D], error) {
	s.reset()

	entryDist := costs.from(entry)
	s.candidates.Push(item[D]{id: entry, dist: entryDist})
	s.visited.add(entry)
	if filter == nil || filter(c.getItem(entry)) {
		s.topCandidates.Push(item[D]{id: entry, dist: entryDist})
	}

	for s.candidates.Len() > 0 {
		select {
		case <-ctx.Done():
			return drainAscending(s.topCandidates), nil
		default:
		}

		if c.currentVersion() != versionAtStart {
			return nil, ErrGraphChanged
		}

		near := s.candidates.Peek()
		if s.topCandidates.Len() >= ef {
			far := s.topCandidates.Peek()
			if near.dist > far.dist {
				break
			}
		}

		cand := s.candidates.Pop()
		n := c.getNode(cand.id)
		if n == nil {
			continue
		}

		for _, nb := range n.outAt(layer) {
			if s.visited.contains(nb) {
				continue
			}
			s.visited.add(nb)
			if !c.live(nb) {
				continue
			}

			select {
			case <-ctx.Done():
				return drainAscending(s.topCandidates), nil
			default:
			}

			nbDist := costs.from(nb)
			admit := s.topCandidates.Len() < ef
			if !admit {
				admit = nbDist < s.topCandidates.Peek().dist
			}
			if !admit {
				continue
			}

			s.candidates.Push(item[D]{id: nb, dist: nbDist})
			if filter == nil || filter(c.getItem(nb)) {
				s.topCandidates.Push(item[D]{id: nb, dist: nbDist})
				if s.topCandidates.Len() > ef {
					s.topCandidates.Pop()
				}
			}
		}
	}

	return drainAscending(s.topCandidates), nil
}

// drainAscending pops every element from a max-heap and returns them
// sorted ascending by distance. The heap is left empty; callers always
// reset() before the next search so this is not a problem.
func drainAscending[D constraints.Ordered](h *binaryHeap[D]) []item[D] {
	n := h.Len()
	out := make([]item[D], n)
	for i := n - 1; i >= 0; i-- {
		out[i] = h.Pop()
	}
	return out
}

// coarseDescent performs single-candidate greedy hops from start at
// fromLayer down to (but not including) toLayerExclusive, used both by
// INSERT's descent to the node's own layer and by local repair / K-NN
// search's descent to layer 0.
func coarseDescent[T any, D constraints.Ordered](c *core[T, D], costs *travelingCosts[T, D], start, fromLayer, toLayerExclusive int) int {
	ep := start
	epDist := costs.from(ep)

	for layer := fromLayer; layer > toLayerExclusive; layer-- {
		for {
			n := c.getNode(ep)
			if n == nil || layer > n.maxLayer {
				break
			}
			improved := false
			for _, nb := range n.outAt(layer) {
				if !c.live(nb) {
					continue
				}
				d := costs.from(nb)
				if d < epDist {
					ep = nb
					epDist = d
					improved = true
				}
			}
			if !improved {
				break
			}
		}
	}

	return ep
}
