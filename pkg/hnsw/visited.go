package hnsw

import "github.com/arborist-labs/hnswgraph/pkg/pools"

// visitedBitSet is a dense per-search scratch set of node ids. Clear cost
// is proportional to the number of bits touched since the last clear, not
// to the corpus size, because SEARCH-LAYER runs this many thousands of
// times per search session.
type visitedBitSet struct {
	words   []uint64
	dirtied []int
}

func newVisitedBitSet(capacity int) *visitedBitSet {
	v := &visitedBitSet{}
	v.growTo(capacity)
	return v
}

// growTo extends words to cover bit n, pulling the new backing slice from
// pkg/pools.Uint64Pool rather than allocating fresh every time a search's
// working set outgrows its current capacity. Positions beyond the old
// length are explicitly zeroed: a pooled slice may carry stale bits from a
// prior user.
func (v *visitedBitSet) growTo(n int) {
	need := n/64 + 1
	if need <= len(v.words) {
		return
	}
	grown := pools.GetUint64s(need)[:need]
	copy(grown, v.words)
	for i := len(v.words); i < need; i++ {
		grown[i] = 0
	}
	if v.words != nil {
		pools.PutUint64s(v.words)
	}
	v.words = grown
}

func (v *visitedBitSet) add(id int) {
	v.growTo(id)
	word := id / 64
	bit := uint64(1) << uint(id%64)
	if v.words[word]&bit == 0 {
		v.dirtied = append(v.dirtied, word)
	}
	v.words[word] |= bit
}

func (v *visitedBitSet) contains(id int) bool {
	word := id / 64
	if word >= len(v.words) {
		return false
	}
	bit := uint64(1) << uint(id%64)
	return v.words[word]&bit != 0
}

// clear resets only the words touched since the previous clear.
func (v *visitedBitSet) clear() {
	for _, w := range v.dirtied {
		v.words[w] = 0
	}
	v.dirtied = v.dirtied[:0]
}
