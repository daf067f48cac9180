package semantic

import (
	"fmt"
	"sort"
)

// SquaredL2 computes the squared Euclidean distance between two vectors of
// equal length. Smaller means more similar.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Search returns the k nearest slots to query, closest first.
// The result has min(k, Len()) entries; equal distances keep slot order.
// An empty index or non-positive k yields an empty result, not an error.
func (x *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 || len(x.vectors) == 0 {
		return []Hit{}, nil
	}
	if len(query) != x.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d", ErrDimensionMismatch, len(query), x.dims)
	}

	hits := make([]Hit, len(x.vectors))
	for slot, v := range x.vectors {
		hits[slot] = Hit{Slot: slot, Distance: SquaredL2(query, v)}
	}

	// Stable sort keeps insertion order among ties
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}
