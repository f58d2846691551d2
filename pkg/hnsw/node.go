package hnsw

// node is a single vertex in the layered proximity graph. Nodes never hold
// pointers to each other: every reference is an integer id into the arena
// owned by Core. This is the arena+index pattern and is load-bearing for
// tombstone reuse, stable serialization, and the dense visited bitset.
type node struct {
	id       int
	maxLayer int

	// connections[l] holds outgoing neighbor ids at layer l, l in [0, maxLayer].
	connections [][]int

	// inConnections[l] holds incoming neighbor ids at layer l, maintained
	// symmetric with peers' connections by Core.Connect/Disconnect.
	inConnections [][]int

	// tombstoned marks this arena slot as vacant; its id may be reused.
	tombstoned bool
}

func newNode(id, maxLayer int) *node {
	n := &node{
		id:            id,
		maxLayer:      maxLayer,
		connections:   make([][]int, maxLayer+1),
		inConnections: make([][]int, maxLayer+1),
	}
	for l := 0; l <= maxLayer; l++ {
		n.connections[l] = make([]int, 0, 4)
		n.inConnections[l] = make([]int, 0, 4)
	}
	return n
}

func (n *node) outAt(layer int) []int {
	if layer > n.maxLayer {
		return nil
	}
	return n.connections[layer]
}

// reset clears adjacency in place so a tombstoned slot can be reused
// without reallocating the backing node struct.
func (n *node) reset(id, maxLayer int) {
	n.id = id
	n.maxLayer = maxLayer
	n.tombstoned = false
	if cap(n.connections) >= maxLayer+1 {
		n.connections = n.connections[:maxLayer+1]
		n.inConnections = n.inConnections[:maxLayer+1]
	} else {
		n.connections = make([][]int, maxLayer+1)
		n.inConnections = make([][]int, maxLayer+1)
	}
	for l := 0; l <= maxLayer; l++ {
		n.connections[l] = n.connections[l][:0]
		n.inConnections[l] = n.inConnections[l][:0]
	}
}

func removeFromSlice(s []int, id int) []int {
	for i, v := range s {
		if v == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func containsID(s []int, id int) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}
