package hnsw

import "testing"

func TestDefaultParametersValidate(t *testing.T) {
	p := DefaultParameters()
	if err := p.Validate(); err != nil {
		t.Fatalf("default parameters should validate, got %v", err)
	}
}

func TestValidateRejectsUnknownHeuristic(t *testing.T) {
	p := DefaultParameters()
	p.NeighborHeuristic = "quantum"
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for unknown NeighborHeuristic")
	}
}

func TestValidateRejectsMBelowMinimum(t *testing.T) {
	p := DefaultParameters()
	p.M = 1
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for M below the validator minimum")
	}
}

func TestMForLayerDoublesAtLayerZero(t *testing.T) {
	p := DefaultParameters()
	p.M = 10
	if got := p.mForLayer(0); got != 20 {
		t.Fatalf("mForLayer(0) = %d, want 20", got)
	}
	if got := p.mForLayer(1); got != 10 {
		t.Fatalf("mForLayer(1) = %d, want 10", got)
	}
}

func TestSearchEfHonorsMinNN(t *testing.T) {
	p := DefaultParameters()
	p.MinNN = 50
	if got := p.searchEf(5); got != 50 {
		t.Fatalf("searchEf(5) = %d, want 50 (MinNN floor)", got)
	}
	if got := p.searchEf(100); got != 100 {
		t.Fatalf("searchEf(100) = %d, want 100", got)
	}
}

func TestLoadParametersMissingFile(t *testing.T) {
	if _, err := LoadParameters("/nonexistent/path/to/params.yaml"); err == nil {
		t.Fatal("expected error reading a nonexistent parameters file")
	}
}
