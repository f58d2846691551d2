package hnsw

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// neighborSelector implements one SELECT-NEIGHBORS variant. The three
// concrete types below form a closed set dispatched on Parameters.NeighborHeuristic
// at Core construction time — an interface, not an inheritance hierarchy,
// per the "avoid deep inheritance" design note.
type neighborSelector[T any, D constraints.Ordered] interface {
	// selectBestForConnecting picks up to m neighbor ids from candidates,
	// which are distances already computed to the point described by costs.
	selectBestForConnecting(c *core[T, D], candidates []item[D], m, layer int, costs *travelingCosts[T, D]) []int
}

func newSelector[T any, D constraints.Ordered](h NeighborHeuristic) neighborSelector[T, D] {
	switch h {
	case HeuristicHeuristic:
		return heuristicSelector[T, D]{}
	case HeuristicCustom:
		return customSelector[T, D]{}
	default:
		return simpleSelector[T, D]{}
	}
}

func sortedByDist[D constraints.Ordered](candidates []item[D]) []item[D] {
	sorted := make([]item[D], len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return lessMin(sorted[i], sorted[j]) })
	return sorted
}

// simpleSelector implements Algorithm 3: keep the m nearest candidates.
type simpleSelector[T any, D constraints.Ordered] struct{}

func (simpleSelector[T, D]) selectBestForConnecting(_ *core[T, D], candidates []item[D], m, _ int, _ *travelingCosts[T, D]) []int {
	sorted := sortedByDist(candidates)
	if len(sorted) > m {
		sorted = sorted[:m]
	}
	ids := make([]int, len(sorted))
	for i, it := range sorted {
		ids[i] = it.id
	}
	return ids
}

// heuristicSelector implements Algorithm 4: optional candidate-set
// expansion, a diversity accept test against already-accepted results,
// and optional refill from the discard pile.
type heuristicSelector[T any, D constraints.Ordered] struct{}

func (heuristicSelector[T, D]) selectBestForConnecting(c *core[T, D], candidates []item[D], m, layer int, costs *travelingCosts[T, D]) []int {
	working := candidates
	if c.params.ExpandBestSelection {
		working = expandCandidates(c, candidates, layer, costs)
	}
	working = sortedByDist(working)

	result := make([]int, 0, m)
	discarded := make([]item[D], 0)

	for _, cand := range working {
		if len(result) >= m {
			break
		}
		if acceptDiverse(c, cand, result) {
			result = append(result, cand.id)
		} else {
			discarded = append(discarded, cand)
		}
	}

	if c.params.KeepPrunedConnections {
		for _, d := range discarded {
			if len(result) >= m {
				break
			}
			result = append(result, d.id)
		}
	}

	return result
}

// customSelector implements Algorithm 5: the same diversity test as the
// heuristic selector, but without candidate expansion or discard reuse.
type customSelector[T any, D constraints.Ordered] struct{}

func (customSelector[T, D]) selectBestForConnecting(c *core[T, D], candidates []item[D], m, _ int, _ *travelingCosts[T, D]) []int {
	working := sortedByDist(candidates)

	result := make([]int, 0, m)
	for _, cand := range working {
		if len(result) >= m {
			break
		}
		if acceptDiverse(c, cand, result) {
			result = append(result, cand.id)
		}
	}
	return result
}

// expandCandidates grows the candidate set with the layer-ℓ out-neighbors
// of every initial candidate, computing fresh distances to the target.
func expandCandidates[T any, D constraints.Ordered](c *core[T, D], candidates []item[D], layer int, costs *travelingCosts[T, D]) []item[D] {
	seen := make(map[int]bool, len(candidates))
	for _, it := range candidates {
		seen[it.id] = true
	}

	working := make([]item[D], len(candidates))
	copy(working, candidates)

	for _, it := range candidates {
		nd := c.getNode(it.id)
		if nd == nil {
			continue
		}
		for _, nb := range nd.outAt(layer) {
			if seen[nb] || !c.live(nb) {
				continue
			}
			seen[nb] = true
			working = append(working, item[D]{id: nb, dist: costs.from(nb)})
		}
	}

	return working
}

// acceptDiverse implements the RNG-like diversity test shared by the
// heuristic and custom selectors: a candidate is accepted only if it is
// closer to the target than it is to every already-accepted result.
func acceptDiverse[T any, D constraints.Ordered](c *core[T, D], cand item[D], accepted []int) bool {
	candItem := c.items[cand.id]
	for _, r := range accepted {
		if c.distance(candItem, c.items[r]) <= cand.dist {
			return false
		}
	}
	return true
}
