package embedding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

// countingProvider counts calls to the wrapped provider.
type countingProvider struct {
	Provider
	calls int
	fail  bool
}

func (c *countingProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	c.calls++
	if c.fail {
		return Embedding{}, errors.New("boom")
	}
	return c.Provider.Embed(ctx, text)
}

func TestCachedProvider_MemoryHit(t *testing.T) {
	inner := &countingProvider{Provider: NewHashProvider(8)}
	c, err := NewCachedProvider(inner, WithCacheSize(4))
	if err != nil {
		t.Fatalf("NewCachedProvider failed: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	first, err := c.Embed(ctx, "vaccine")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	second, err := c.Embed(ctx, "vaccine")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	for i := range first.Vector {
		if first.Vector[i] != second.Vector[i] {
			t.Fatalf("cached vector differs at %d", i)
		}
	}

	// Mutating a returned vector must not poison the cache
	second.Vector[0] = 42
	third, _ := c.Embed(ctx, "vaccine")
	if third.Vector[0] == 42 {
		t.Error("cache returned a shared slice")
	}
}

func TestCachedProvider_DiskPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.db")
	ctx := context.Background()

	inner := &countingProvider{Provider: NewHashProvider(8)}
	c, err := NewCachedProvider(inner, WithDiskCache(path))
	if err != nil {
		t.Fatalf("NewCachedProvider failed: %v", err)
	}
	want, err := c.Embed(ctx, "protein folding")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	inner2 := &countingProvider{Provider: NewHashProvider(8), fail: true}
	c2, err := NewCachedProvider(inner2, WithDiskCache(path))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer c2.Close()

	got, err := c2.Embed(ctx, "protein folding")
	if err != nil {
		t.Fatalf("Embed from disk failed: %v", err)
	}
	if inner2.calls != 0 {
		t.Errorf("inner called %d times, want 0", inner2.calls)
	}
	for i := range want.Vector {
		if want.Vector[i] != got.Vector[i] {
			t.Fatalf("disk vector differs at %d", i)
		}
	}
}

func TestCachedProvider_DiskWriteFailureKeepsVector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.db")
	inner := &countingProvider{Provider: NewHashProvider(8)}
	c, err := NewCachedProvider(inner, WithDiskCache(path),
		WithCacheLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("NewCachedProvider failed: %v", err)
	}
	// A closed database rejects every write.
	if err := c.db.Close(); err != nil {
		t.Fatalf("closing db: %v", err)
	}

	emb, err := c.Embed(context.Background(), "vaccine study")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	want, _ := NewHashProvider(8).Embed(context.Background(), "vaccine study")
	for i := range want.Vector {
		if emb.Vector[i] != want.Vector[i] {
			t.Fatalf("vector differs at %d", i)
		}
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCachedProvider_ErrorNotCached(t *testing.T) {
	inner := &countingProvider{Provider: NewHashProvider(8), fail: true}
	c, err := NewCachedProvider(inner)
	if err != nil {
		t.Fatalf("NewCachedProvider failed: %v", err)
	}

	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCachedProvider_BlankIsZero(t *testing.T) {
	inner := &countingProvider{Provider: NewHashProvider(8)}
	c, _ := NewCachedProvider(inner)

	emb, err := c.Embed(context.Background(), " ")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if emb.Dimensions() != 8 || inner.calls != 0 {
		t.Errorf("dims=%d calls=%d", emb.Dimensions(), inner.calls)
	}
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	out := decodeVector(encodeVector(in))
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
	if decodeVector([]byte{1, 2, 3}) != nil {
		t.Error("expected nil for truncated data")
	}
}
