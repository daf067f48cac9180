// Package embedding provides vector embedding generation for article text.
package embedding

import "strings"

// Embedding represents a vector embedding of text.
type Embedding struct {
	Vector []float32 // The embedding vector (e.g., 384 dimensions for all-minilm)
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// Zero returns the zero embedding of the given dimensionality.
func Zero(dims int) Embedding {
	return Embedding{Vector: make([]float32, dims)}
}

// IsBlank reports whether text has nothing to embed.
// Providers return Zero for blank input instead of calling a model.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
