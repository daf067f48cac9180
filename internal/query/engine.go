// Package query answers free-text searches against a record store.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/embedding"
	"github.com/matsen/paperindex/internal/store"
)

// DefaultOverfetch is how many candidates per requested result
// FilteredSearch examines before filtering.
const DefaultOverfetch = 3

// ErrInvalidK is returned when k is not positive.
var ErrInvalidK = errors.New("k must be positive")

// Index is the part of a record store the engine reads.
type Index interface {
	Nearest(vec []float32, k int) ([]store.Match, error)
	Len() int
}

// Engine embeds queries and maps nearest neighbors to caller-facing results.
type Engine struct {
	provider  embedding.Provider
	index     Index
	overfetch int
}

// Option configures an Engine.
type Option func(*Engine)

// WithOverfetch sets the over-fetch factor used by FilteredSearch.
// Values below 1 are ignored.
func WithOverfetch(factor int) Option {
	return func(e *Engine) {
		if factor >= 1 {
			e.overfetch = factor
		}
	}
}

// NewEngine creates an engine that embeds queries with provider and searches index.
// provider must be the one the index was built with.
func NewEngine(provider embedding.Provider, index Index, opts ...Option) *Engine {
	e := &Engine{
		provider:  provider,
		index:     index,
		overfetch: DefaultOverfetch,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns up to k records nearest to text, nearest first.
// Each result carries its squared L2 distance as Score and no embedding.
// An empty store yields an empty slice.
func (e *Engine) Search(ctx context.Context, text string, k int) ([]article.Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	matches, err := e.nearest(ctx, text, k)
	if err != nil {
		return nil, err
	}

	results := make([]article.Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, m.Record.View(m.Distance))
	}
	return results, nil
}

// FilteredSearch returns up to k records nearest to text that pass filters.
// It examines at most k times the over-fetch factor candidates, so fewer
// than k results may come back even when more matching records exist.
func (e *Engine) FilteredSearch(ctx context.Context, text string, filters Filters, k int) ([]article.Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}

	fetch := k * e.overfetch
	if n := e.index.Len(); fetch > n {
		fetch = n
	}
	if fetch == 0 {
		return []article.Result{}, nil
	}

	matches, err := e.nearest(ctx, text, fetch)
	if err != nil {
		return nil, err
	}

	results := make([]article.Result, 0, k)
	for _, m := range matches {
		if !filters.Match(m.Record) {
			continue
		}
		results = append(results, m.Record.View(m.Distance))
		if len(results) == k {
			break
		}
	}
	return results, nil
}

func (e *Engine) nearest(ctx context.Context, text string, k int) ([]store.Match, error) {
	if e.index.Len() == 0 {
		return nil, nil
	}

	emb, err := e.provider.Embed(ctx, strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return e.index.Nearest(emb.Vector, k)
}
