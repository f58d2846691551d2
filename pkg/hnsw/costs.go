package hnsw

import "golang.org/x/exp/constraints"

// travelingCosts binds a fixed destination item to the distance function so
// callers can repeatedly ask "distance from id x to destination" without
// re-threading the destination and distance func through every call site.
// The destination may or may not itself live in the arena: for inserts and
// local repair it is items[nodeId]; for a k-NN search it is the caller's
// query item, which is never assigned an id and never appears in any
// stored connections list.
type travelingCosts[T any, D constraints.Ordered] struct {
	destination T
	distance    DistanceFunc[T, D]
	items       []T
}

func newTravelingCosts[T any, D constraints.Ordered](destination T, distance DistanceFunc[T, D], items []T) *travelingCosts[T, D] {
	return &travelingCosts[T, D]{
		destination: destination,
		distance:    distance,
		items:       items,
	}
}

// from returns the distance from the arena item at id to the destination.
func (c *travelingCosts[T, D]) from(id int) D {
	return c.distance(c.destination, c.items[id])
}
