package hnsw

import "golang.org/x/exp/constraints"

// item pairs a node id with its distance to some fixed destination.
type item[D constraints.Ordered] struct {
	id   int
	dist D
}

// lessMin reports whether a should sort before b for a "closer on top"
// (min) ordering, breaking ties on id for determinism.
func lessMin[D constraints.Ordered](a, b item[D]) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.id < b.id
}

// lessMax is the complementary "farther on top" ordering used by the
// bounded top-candidates heap.
func lessMax[D constraints.Ordered](a, b item[D]) bool {
	if a.dist != b.dist {
		return a.dist > b.dist
	}
	return a.id > b.id
}

// binaryHeap is an implicit binary heap over a reusable backing slice,
// parameterized by a total ordering. The same struct is Reset and reused
// across many SEARCH-LAYER calls on a single goroutine (see LayerSearcher)
// so that no allocation occurs once the buffer has grown to its working size.
type binaryHeap[D constraints.Ordered] struct {
	buf  []item[D]
	less func(a, b item[D]) bool
}

func newBinaryHeap[D constraints.Ordered](less func(a, b item[D]) bool, capacity int) *binaryHeap[D] {
	return &binaryHeap[D]{
		buf:  make([]item[D], 0, capacity),
		less: less,
	}
}

func (h *binaryHeap[D]) Len() int { return len(h.buf) }

func (h *binaryHeap[D]) Reset() { h.buf = h.buf[:0] }

func (h *binaryHeap[D]) Peek() item[D] { return h.buf[0] }

func (h *binaryHeap[D]) Push(x item[D]) {
	h.buf = append(h.buf, x)
	h.siftUp(len(h.buf) - 1)
}

func (h *binaryHeap[D]) Pop() item[D] {
	n := len(h.buf) - 1
	top := h.buf[0]
	h.buf[0] = h.buf[n]
	h.buf = h.buf[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

// BuildFrom replaces the backing buffer with src (copied) and heapifies
// it in O(n), used when a caller wants to bulk-load candidates.
func (h *binaryHeap[D]) BuildFrom(src []item[D]) {
	if cap(h.buf) < len(src) {
		h.buf = make([]item[D], len(src))
	} else {
		h.buf = h.buf[:len(src)]
	}
	copy(h.buf, src)
	for i := len(h.buf)/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
}

func (h *binaryHeap[D]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.buf[i], h.buf[parent]) {
			break
		}
		h.buf[i], h.buf[parent] = h.buf[parent], h.buf[i]
		i = parent
	}
}

func (h *binaryHeap[D]) siftDown(i int) {
	n := len(h.buf)
	for {
		left := 2*i + 1
		right := 2*i + 2
		smallest := i
		if left < n && h.less(h.buf[left], h.buf[smallest]) {
			smallest = left
		}
		if right < n && h.less(h.buf[right], h.buf[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.buf[i], h.buf[smallest] = h.buf[smallest], h.buf[i]
		i = smallest
	}
}
