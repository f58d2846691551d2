package hnsw

import "math/rand/v2"

// defaultRNG wraps math/rand/v2 and redraws whenever its [0, 1) output is 0,
// so values lie in (0, 1), since the layer-sampling formula takes ln(u) and
// u=0 is undefined.
type defaultRNG struct {
	src *rand.Rand
}

// NewDefaultRNG returns an RNG seeded from a fixed pair of uint64 seeds,
// suitable for deterministic graphs (see property 7, determinism, in the
// testable-properties list).
func NewDefaultRNG(seed1, seed2 uint64) RNG {
	return &defaultRNG{src: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewSystemRNG returns an RNG seeded from the runtime's entropy source.
func NewSystemRNG() RNG {
	return &defaultRNG{src: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func (r *defaultRNG) Float64() float64 {
	v := r.src.Float64()
	for v == 0 {
		v = r.src.Float64()
	}
	return v
}
