package hnsw

import (
	"bytes"
	"context"
	"testing"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	ge := newTestEngine()
	items := gridItems(300)
	if _, err := ge.AddItems(context.Background(), items, nil); err != nil {
		t.Fatalf("AddItems error: %v", err)
	}

	query := gridPoint(123, 0)
	before, err := ge.KnnSearch(context.Background(), query, 10, nil)
	if err != nil {
		t.Fatalf("KnnSearch error: %v", err)
	}

	var buf bytes.Buffer
	if err := ge.SerializeGraph(&buf); err != nil {
		t.Fatalf("SerializeGraph error: %v", err)
	}

	restored, err := DeserializeGraph[vec, float64](items, euclidean, seededRNG(), nil, &buf)
	if err != nil {
		t.Fatalf("DeserializeGraph error: %v", err)
	}

	if restored.Len() != ge.Len() {
		t.Fatalf("live count mismatch: got %d want %d", restored.Len(), ge.Len())
	}

	after, err := restored.KnnSearch(context.Background(), query, 10, nil)
	if err != nil {
		t.Fatalf("KnnSearch after restore error: %v", err)
	}

	if len(before) != len(after) {
		t.Fatalf("result count mismatch: before=%d after=%d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID || before[i].Distance != after[i].Distance {
			t.Fatalf("result %d mismatch: before=%+v after=%+v", i, before[i], after[i])
		}
	}
}

func TestDeserializeRejectsWrongItemCount(t *testing.T) {
	ge := newTestEngine()
	items := gridItems(10)
	if _, err := ge.AddItems(context.Background(), items, nil); err != nil {
		t.Fatalf("AddItems error: %v", err)
	}

	var buf bytes.Buffer
	if err := ge.SerializeGraph(&buf); err != nil {
		t.Fatalf("SerializeGraph error: %v", err)
	}

	_, err := DeserializeGraph[vec, float64](items[:5], euclidean, nil, nil, &buf)
	if err == nil {
		t.Fatal("expected error on item-count mismatch")
	}
}

func TestDeserializeRejectsCorruptMagic(t *testing.T) {
	_, err := DeserializeGraph[vec, float64](nil, euclidean, nil, nil, bytes.NewReader([]byte{0, 0, 0, 1, 'x'}))
	if err == nil {
		t.Fatal("expected error on corrupt header")
	}
}

func TestSerializePreservesTombstones(t *testing.T) {
	ge := newTestEngine()
	items := gridItems(20)
	ids, err := ge.AddItems(context.Background(), items, nil)
	if err != nil {
		t.Fatalf("AddItems error: %v", err)
	}
	if err := ge.RemoveItem(ids[3]); err != nil {
		t.Fatalf("RemoveItem error: %v", err)
	}

	var buf bytes.Buffer
	if err := ge.SerializeGraph(&buf); err != nil {
		t.Fatalf("SerializeGraph error: %v", err)
	}

	restored, err := DeserializeGraph[vec, float64](items, euclidean, nil, nil, &buf)
	if err != nil {
		t.Fatalf("DeserializeGraph error: %v", err)
	}
	if restored.core.live(ids[3]) {
		t.Fatalf("expected id %d to remain tombstoned after round trip", ids[3])
	}
	if _, err := restored.GetItem(ids[3]); err == nil {
		t.Fatalf("expected GetItem to error for a tombstoned id")
	}
}
