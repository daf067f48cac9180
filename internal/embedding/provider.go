package embedding

import (
	"context"
	"errors"
)

// Errors returned by embedding providers.
var (
	ErrUnavailable   = errors.New("embedding provider unavailable")
	ErrModelNotFound = errors.New("embedding model not found")
)

// Provider generates embeddings from text.
//
// Implementations are deterministic for a fixed model: the same text yields
// the same vector. Blank text yields the zero vector without error.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}
