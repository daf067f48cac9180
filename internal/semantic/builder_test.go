package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/embedding"
)

type failingProvider struct {
	embedding.Provider
	failOn string
}

func (f failingProvider) Embed(ctx context.Context, text string) (embedding.Embedding, error) {
	if text == f.failOn {
		return embedding.Embedding{}, errors.New("model crashed")
	}
	return f.Provider.Embed(ctx, text)
}

func TestBuilder_Build(t *testing.T) {
	provider := embedding.NewHashProvider(16)
	articles := []article.Article{
		{ID: "1", Title: "Vaccine study", Abstract: "mRNA efficacy"},
		{ID: "2"},
		{Title: "Protein folding"},
	}

	var calls []int
	b := NewBuilder(provider)
	b.SetProgressReporter(ProgressFunc(func(current, total int) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		calls = append(calls, current)
	}))

	vectors, stats, err := b.Build(context.Background(), articles)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	if stats.Embedded != 3 || stats.Blank != 1 {
		t.Errorf("stats = %+v, want 3 embedded, 1 blank", stats)
	}
	if stats.Model != embedding.HashModelName {
		t.Errorf("Model = %s", stats.Model)
	}
	if len(calls) != 3 || calls[2] != 3 {
		t.Errorf("progress calls = %v", calls)
	}

	want, _ := provider.Embed(context.Background(), "Vaccine study mRNA efficacy")
	for i := range want.Vector {
		if vectors[0][i] != want.Vector[i] {
			t.Fatalf("vector 0 differs from title+abstract embedding at %d", i)
		}
	}
	for _, v := range vectors[1] {
		if v != 0 {
			t.Fatal("blank article should embed to the zero vector")
		}
	}
}

func TestBuilder_BuildFailure(t *testing.T) {
	provider := failingProvider{Provider: embedding.NewHashProvider(4), failOn: "b "}
	articles := []article.Article{{ID: "a", Title: "a"}, {ID: "b", Title: "b"}}

	vectors, stats, err := NewBuilder(provider).Build(context.Background(), articles)
	if err == nil {
		t.Fatal("expected error")
	}
	if vectors != nil || stats != nil {
		t.Error("failed build should return no partial results")
	}
}

func TestBuilder_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewBuilder(embedding.NewHashProvider(4)).Build(ctx, []article.Article{{Title: "x"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
