package hnsw

import "golang.org/x/exp/constraints"

// DistanceFunc computes the distance between two items. Implementations are
// expected to be pure and to panic on invalid input (e.g. mismatched vector
// dimensions) rather than returning an error; the panic is left to
// propagate unchanged to the caller of AddItems/KnnSearch.
type DistanceFunc[T any, D constraints.Ordered] func(a, b T) D

// RNG supplies uniform floats in (0, 1] for layer assignment. Injected so
// callers can seed it for deterministic graphs (see NewSystemRNG for the
// non-deterministic default).
type RNG interface {
	Float64() float64
}
