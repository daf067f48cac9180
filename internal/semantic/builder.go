package semantic

import (
	"context"
	"fmt"
	"time"

	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/embedding"
)

// ProgressReporter receives progress updates during re-embedding.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// Builder computes fresh embeddings for a set of articles.
type Builder struct {
	provider embedding.Provider
	progress ProgressReporter
}

// NewBuilder creates a new builder.
func NewBuilder(provider embedding.Provider) *Builder {
	return &Builder{provider: provider}
}

// SetProgressReporter sets the progress reporter for the builder.
func (b *Builder) SetProgressReporter(reporter ProgressReporter) {
	b.progress = reporter
}

// Build embeds every article's title and abstract with the builder's
// provider. The returned vectors are in article order. Nothing is returned
// unless every article embeds successfully.
func (b *Builder) Build(ctx context.Context, articles []article.Article) ([][]float32, *BuildStats, error) {
	startTime := time.Now()

	stats := &BuildStats{Model: b.provider.ModelName()}
	vectors := make([][]float32, len(articles))
	total := len(articles)

	for i, a := range articles {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		text := a.EmbeddingText()
		emb, err := b.provider.Embed(ctx, text)
		if err != nil {
			return nil, nil, fmt.Errorf("embedding article %d (%s): %w", i, label(a), err)
		}
		if emb.Dimensions() != b.provider.Dimensions() {
			return nil, nil, fmt.Errorf("%w: article %d (%s) has %d dimensions, want %d",
				ErrDimensionMismatch, i, label(a), emb.Dimensions(), b.provider.Dimensions())
		}
		vectors[i] = emb.Vector

		if embedding.IsBlank(text) {
			stats.Blank++
		}
		stats.Embedded++

		if b.progress != nil {
			b.progress.OnProgress(i+1, total)
		}
	}

	stats.Duration = time.Since(startTime)
	return vectors, stats, nil
}

// label names an article in error messages.
func label(a article.Article) string {
	if a.HasID() {
		return a.ID
	}
	return fmt.Sprintf("%q", a.Title)
}
