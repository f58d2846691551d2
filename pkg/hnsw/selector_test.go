package hnsw

import "testing"

func newTestCore(h NeighborHeuristic) *core[vec, float64] {
	p := testParams()
	p.NeighborHeuristic = h
	return newCore[vec, float64](p, euclidean)
}

func TestSimpleSelectorKeepsMNearest(t *testing.T) {
	c := newTestCore(HeuristicSimple)
	target := gridPoint(0, 0)
	c.items = []vec{target, gridPoint(1, 0), gridPoint(2, 0), gridPoint(3, 0), gridPoint(10, 0)}
	costs := newTravelingCosts(target, c.distance, c.items)

	candidates := []item[float64]{
		{id: 4, dist: costs.from(4)},
		{id: 1, dist: costs.from(1)},
		{id: 3, dist: costs.from(3)},
		{id: 2, dist: costs.from(2)},
	}

	kept := simpleSelector[vec, float64]{}.selectBestForConnecting(c, candidates, 2, 0, costs)
	if len(kept) != 2 {
		t.Fatalf("expected 2 survivors, got %d: %v", len(kept), kept)
	}
	if kept[0] != 1 || kept[1] != 2 {
		t.Fatalf("expected nearest two ids [1 2] in order, got %v", kept)
	}
}

func TestAcceptDiverseRejectsRedundantCandidate(t *testing.T) {
	c := newTestCore(HeuristicCustom)
	// id 1 is the target's nearest candidate and is accepted first; id 2 sits
	// almost on top of it, so id 2 should be rejected once 1 is accepted.
	c.items = []vec{
		gridPoint(0, 0), // target itself, unused as arena id
		gridPoint(1, 0), // accepted first
		gridPoint(1.05, 0),
		gridPoint(0, 5), // orthogonal direction, should be accepted
	}
	target := gridPoint(0, 0)
	costs := newTravelingCosts(target, c.distance, c.items)

	candidates := []item[float64]{
		{id: 1, dist: costs.from(1)},
		{id: 2, dist: costs.from(2)},
		{id: 3, dist: costs.from(3)},
	}

	kept := customSelector[vec, float64]{}.selectBestForConnecting(c, candidates, 3, 0, costs)
	for _, id := range kept {
		if id == 2 {
			t.Fatalf("expected candidate 2 to be rejected as non-diverse, kept=%v", kept)
		}
	}
	if len(kept) != 2 {
		t.Fatalf("expected ids {1,3} to survive, got %v", kept)
	}
}

func TestHeuristicSelectorKeepPrunedConnectionsRefills(t *testing.T) {
	c := newTestCore(HeuristicHeuristic)
	c.params.KeepPrunedConnections = true
	c.items = []vec{
		gridPoint(0, 0),
		gridPoint(1, 0),
		gridPoint(1.01, 0), // rejected by diversity test against id 1
	}
	target := gridPoint(0, 0)
	costs := newTravelingCosts(target, c.distance, c.items)
	candidates := []item[float64]{
		{id: 1, dist: costs.from(1)},
		{id: 2, dist: costs.from(2)},
	}

	kept := heuristicSelector[vec, float64]{}.selectBestForConnecting(c, candidates, 2, 0, costs)
	if len(kept) != 2 {
		t.Fatalf("expected discard refill to reach m=2, got %v", kept)
	}
}

func TestExpandCandidatesAddsUnseenOutNeighbors(t *testing.T) {
	c := newTestCore(HeuristicHeuristic)
	a := c.allocate(gridPoint(1, 0), 0)
	b := c.allocate(gridPoint(2, 0), 0)
	a.connections[0] = append(a.connections[0], b.id)

	target := gridPoint(0, 0)
	costs := newTravelingCosts(target, c.distance, c.items)
	candidates := []item[float64]{{id: a.id, dist: costs.from(a.id)}}

	expanded := expandCandidates(c, candidates, 0, costs)
	found := false
	for _, it := range expanded {
		if it.id == b.id {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected expandCandidates to pull in out-neighbor %d, got %v", b.id, expanded)
	}
}
