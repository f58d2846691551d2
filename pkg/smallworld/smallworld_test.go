package smallworld

import (
	"bytes"
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/arborist-labs/hnswgraph/pkg/hnsw"
)

type point []float64

func euclidean(a, b point) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func gridItems(n int) []point {
	items := make([]point, n)
	for i := 0; i < n; i++ {
		items[i] = point{float64(i), 0}
	}
	return items
}

func TestBuildRejectsInvalidParameters(t *testing.T) {
	params := hnsw.DefaultParameters()
	params.M = 0
	if _, err := Build[point, float64](euclidean, nil, params, true); err == nil {
		t.Fatal("expected Build to reject invalid parameters")
	}
}

func TestAddItemsAndKnnSearch(t *testing.T) {
	sw, err := Build[point, float64](euclidean, hnsw.NewDefaultRNG(1, 1), hnsw.DefaultParameters(), true)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	items := gridItems(100)
	ids, err := sw.AddItems(context.Background(), items, nil)
	if err != nil {
		t.Fatalf("AddItems error: %v", err)
	}
	if len(ids) != 100 {
		t.Fatalf("expected 100 ids, got %d", len(ids))
	}

	results, err := sw.KnnSearch(context.Background(), point{42, 0}, 1, nil)
	if err != nil {
		t.Fatalf("KnnSearch error: %v", err)
	}
	if len(results) != 1 || results[0].ID != 42 {
		t.Fatalf("expected to find id 42, got %+v", results)
	}
}

func TestThreadUnsafeFacadeSkipsLocking(t *testing.T) {
	sw, err := Build[point, float64](euclidean, nil, hnsw.DefaultParameters(), false)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if _, ok := sw.mu.(noopLocker); !ok {
		t.Fatal("threadSafe=false should install a noopLocker")
	}
}

func TestConcurrentReadersAndWriterThroughFacade(t *testing.T) {
	sw, err := Build[point, float64](euclidean, hnsw.NewDefaultRNG(3, 4), hnsw.DefaultParameters(), true)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if _, err := sw.AddItems(context.Background(), gridItems(200), nil); err != nil {
		t.Fatalf("AddItems error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			r := rand.New(rand.NewPCG(uint64(seed), 11))
			for j := 0; j < 30; j++ {
				q := point{r.Float64() * 300, 0}
				if _, err := sw.KnnSearch(context.Background(), q, 5, nil); err != nil {
					errs <- err
					return
				}
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := sw.AddItems(context.Background(), gridItems(200)[:100], nil); err != nil {
			errs <- err
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent access through facade failed: %v", err)
	}
}

func TestSerializeDeserializeRoundTripThroughFacade(t *testing.T) {
	params := hnsw.DefaultParameters()
	sw, err := Build[point, float64](euclidean, hnsw.NewDefaultRNG(9, 9), params, true)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	items := gridItems(150)
	if _, err := sw.AddItems(context.Background(), items, nil); err != nil {
		t.Fatalf("AddItems error: %v", err)
	}

	var buf bytes.Buffer
	if err := sw.SerializeGraph(&buf); err != nil {
		t.Fatalf("SerializeGraph error: %v", err)
	}

	restored, err := DeserializeGraph[point, float64](items, euclidean, hnsw.NewDefaultRNG(9, 9), params, &buf, true)
	if err != nil {
		t.Fatalf("DeserializeGraph error: %v", err)
	}
	if restored.Len() != sw.Len() {
		t.Fatalf("live count mismatch: got %d want %d", restored.Len(), sw.Len())
	}
}

func TestWithReporterPreservesExistingData(t *testing.T) {
	sw, err := Build[point, float64](euclidean, hnsw.NewDefaultRNG(5, 5), hnsw.DefaultParameters(), true)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if _, err := sw.AddItems(context.Background(), gridItems(40), nil); err != nil {
		t.Fatalf("AddItems error: %v", err)
	}

	before := sw.Len()
	sw.WithReporter(hnsw.NopReporter{})
	if got := sw.Len(); got != before {
		t.Fatalf("WithReporter must not discard data: had %d items, now %d", before, got)
	}

	if _, err := sw.GetItem(0); err != nil {
		t.Fatalf("GetItem(0) error after WithReporter: %v", err)
	}

	results, err := sw.KnnSearch(context.Background(), point{20, 0}, 1, nil)
	if err != nil {
		t.Fatalf("KnnSearch error after WithReporter: %v", err)
	}
	if len(results) != 1 || results[0].ID != 20 {
		t.Fatalf("expected to still find id 20 after WithReporter, got %+v", results)
	}
}

func TestRemoveItemThroughFacade(t *testing.T) {
	sw, err := Build[point, float64](euclidean, nil, hnsw.DefaultParameters(), true)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	ids, err := sw.AddItems(context.Background(), gridItems(10), nil)
	if err != nil {
		t.Fatalf("AddItems error: %v", err)
	}
	if err := sw.RemoveItem(ids[0]); err != nil {
		t.Fatalf("RemoveItem error: %v", err)
	}
	if _, err := sw.GetItem(ids[0]); err == nil {
		t.Fatal("expected GetItem to error for a removed id")
	}
}
