package hnsw

import (
	"context"
	"testing"
)

// buildLineGraph wires n points at (0,0),(1,0),...,(n-1,0) into a single
// layer-0 chain so SEARCH-LAYER has a deterministic path to walk.
func buildLineGraph(t *testing.T, n int) *core[vec, float64] {
	t.Helper()
	c := newTestCore(HeuristicSimple)
	ids := make([]int, n)
	for i := 0; i < n; i++ {
		nd := c.allocate(gridPoint(float64(i), 0), 0)
		ids[i] = nd.id
	}
	for i := 0; i < n-1; i++ {
		c.Connect(ids[i], ids[i+1], 0)
		c.Connect(ids[i+1], ids[i], 0)
	}
	c.entryPoint = ids[0]
	return c
}

func TestSearchLayerFindsNearest(t *testing.T) {
	c := buildLineGraph(t, 10)
	target := gridPoint(7, 0)
	costs := newTravelingCosts(target, c.distance, c.items)

	ls := newLayerSearcher[vec, float64](16)
	results, err := ls.searchLayer(context.Background(), c, c.entryPoint, costs, 5, 0, nil, c.currentVersion())
	if err != nil {
		t.Fatalf("searchLayer error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].id != 7 {
		t.Fatalf("expected nearest id 7, got %d (dist %v)", results[0].id, results[0].dist)
	}
	for i := 1; i < len(results); i++ {
		if results[i].dist < results[i-1].dist {
			t.Fatalf("results not ascending: %v", results)
		}
	}
}

func TestSearchLayerDetectsVersionChange(t *testing.T) {
	c := buildLineGraph(t, 5)
	target := gridPoint(2, 0)
	costs := newTravelingCosts(target, c.distance, c.items)
	staleVersion := c.currentVersion()
	c.bumpVersion()

	ls := newLayerSearcher[vec, float64](8)
	_, err := ls.searchLayer(context.Background(), c, c.entryPoint, costs, 5, 0, nil, staleVersion)
	if err != ErrGraphChanged {
		t.Fatalf("expected ErrGraphChanged, got %v", err)
	}
}

func TestSearchLayerRespectsFilter(t *testing.T) {
	c := buildLineGraph(t, 10)
	target := gridPoint(7, 0)
	costs := newTravelingCosts(target, c.distance, c.items)

	onlyEven := func(v vec) bool {
		return int(v[0])%2 == 0
	}

	ls := newLayerSearcher[vec, float64](16)
	results, err := ls.searchLayer(context.Background(), c, c.entryPoint, costs, 5, 0, onlyEven, c.currentVersion())
	if err != nil {
		t.Fatalf("searchLayer error: %v", err)
	}
	for _, r := range results {
		if r.id%2 != 0 {
			t.Fatalf("filter leaked odd id %d into results", r.id)
		}
	}
}

func TestSearchLayerCancellationReturnsPartial(t *testing.T) {
	c := buildLineGraph(t, 10)
	target := gridPoint(9, 0)
	costs := newTravelingCosts(target, c.distance, c.items)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ls := newLayerSearcher[vec, float64](16)
	_, err := ls.searchLayer(ctx, c, c.entryPoint, costs, 5, 0, nil, c.currentVersion())
	if err != nil {
		t.Fatalf("cancellation should not be an error, got %v", err)
	}
}

func TestCoarseDescentDescendsToNearest(t *testing.T) {
	c := newTestCore(HeuristicSimple)
	n0 := c.allocate(gridPoint(0, 0), 2)
	n1 := c.allocate(gridPoint(5, 0), 1)
	n2 := c.allocate(gridPoint(9, 0), 0)
	c.Connect(n0.id, n1.id, 1)
	c.Connect(n1.id, n0.id, 1)
	c.Connect(n1.id, n2.id, 0)
	c.Connect(n2.id, n1.id, 0)
	c.Connect(n0.id, n1.id, 0)
	c.Connect(n1.id, n0.id, 0)

	target := gridPoint(9, 0)
	costs := newTravelingCosts(target, c.distance, c.items)

	ep := coarseDescent(c, costs, n0.id, 2, 0)
	if ep != n1.id {
		t.Fatalf("expected descent to land on nearest upper-layer node %d, got %d", n1.id, ep)
	}
}
