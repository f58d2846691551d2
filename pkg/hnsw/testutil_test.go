package hnsw

import "math"

// vec is the item type shared by this package's tests: a fixed-dimension
// float64 point under Euclidean distance.
type vec []float64

func euclidean(a, b vec) float64 {
	if len(a) != len(b) {
		panic("euclidean: dimension mismatch")
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// seededRNG produces a fixed, deterministic sequence for reproducible tests.
func seededRNG() RNG {
	return NewDefaultRNG(1, 2)
}

func testParams() Parameters {
	p := DefaultParameters()
	p.InitialItemsSize = 32
	return p
}

func gridPoint(x, y float64) vec {
	return vec{x, y}
}
