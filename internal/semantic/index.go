package semantic

import (
	"errors"
	"fmt"
)

// Errors returned by index operations.
var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// FlatIndex is an exact nearest-neighbor index under squared Euclidean
// distance. It is rebuilt wholesale from the full vector set rather than
// updated incrementally, and holds the vectors by reference.
type FlatIndex struct {
	dims    int
	vectors [][]float32
}

// NewFlatIndex creates an empty index for vectors of the given dimensionality.
func NewFlatIndex(dims int) *FlatIndex {
	return &FlatIndex{dims: dims}
}

// Rebuild replaces the indexed vectors. Slot i refers to vectors[i].
// On error the previous contents are kept.
func (x *FlatIndex) Rebuild(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != x.dims {
			return fmt.Errorf("%w: slot %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(v), x.dims)
		}
	}
	next := make([][]float32, len(vectors))
	copy(next, vectors)
	x.vectors = next
	return nil
}

// Reset empties the index.
func (x *FlatIndex) Reset() {
	x.vectors = nil
}

// Len returns the number of indexed vectors.
func (x *FlatIndex) Len() int {
	return len(x.vectors)
}

// Dimensions returns the vector dimensionality the index accepts.
func (x *FlatIndex) Dimensions() int {
	return x.dims
}
