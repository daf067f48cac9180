// Package store holds the in-memory record set and the similarity index
// built over it, and persists the records as a snapshot.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/embedding"
	"github.com/matsen/paperindex/internal/semantic"
	"github.com/matsen/paperindex/internal/storage"
)

// Errors returned by store operations.
var (
	// ErrIndexStale means the loaded records were embedded by a different
	// model or at a different dimensionality than the current provider.
	// The store answers Statistics but refuses Add and Nearest until Reembed.
	ErrIndexStale = errors.New("index is stale, run reembed")

	// ErrModelMismatch is wrapped by Load when the snapshot header
	// disagrees with the provider.
	ErrModelMismatch = errors.New("snapshot embedding model does not match provider")
)

// Store is the ordered record set plus the index over its embeddings.
// Records and index are guarded by one lock so readers never see an index
// built from a record set of a different length.
type Store struct {
	mu       sync.RWMutex
	provider embedding.Provider
	dataDir  string // empty disables persistence

	records []article.Article
	ids     map[string]int // external id to slot
	index   *semantic.FlatIndex
	stale   bool

	// unreadable is set when Load could not read the snapshot. The file is
	// moved aside before the next write so it is never overwritten.
	unreadable bool

	now    func() time.Time
	newKey func() string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for non-fatal persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock sets the time source used to stamp added_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store. Records are embedded with provider and,
// unless dataDir is empty, persisted as a snapshot in dataDir.
func New(provider embedding.Provider, dataDir string, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		dataDir:  dataDir,
		ids:      make(map[string]int),
		index:    semantic.NewFlatIndex(provider.Dimensions()),
		now:      time.Now,
		newKey:   uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddResult reports the outcome of Add.
type AddResult struct {
	Added      int  `json:"added"`
	Duplicates int  `json:"duplicates"`
	Persisted  bool `json:"persisted"`
}

// NoNew reports whether nothing was added because every candidate was a duplicate.
func (r AddResult) NoNew() bool {
	return r.Added == 0
}

// Add embeds and appends candidates whose id is not already present.
// Candidates without an id are always added. Within a batch the first
// occurrence of an id wins.
//
// Embedding stops at the first failure. Candidates appended before it stay
// in the store, the index is rebuilt over them and the snapshot saved;
// the error is returned alongside the partial result.
func (s *Store) Add(ctx context.Context, candidates []article.Article) (AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result AddResult
	if s.stale {
		return result, ErrIndexStale
	}

	var embedErr error
	for _, c := range candidates {
		id := strings.TrimSpace(c.ID)
		if id != "" {
			if _, dup := s.ids[id]; dup {
				result.Duplicates++
				continue
			}
		}

		emb, err := s.provider.Embed(ctx, c.EmbeddingText())
		if err != nil {
			embedErr = fmt.Errorf("embedding %q: %w", c.Title, err)
			break
		}
		if emb.Dimensions() != s.index.Dimensions() {
			embedErr = fmt.Errorf("%w: got %d, want %d", semantic.ErrDimensionMismatch, emb.Dimensions(), s.index.Dimensions())
			break
		}

		rec := c
		rec.ID = id
		rec.Authors = append(article.Authors(nil), c.Authors...)
		if rec.Key == "" {
			rec.Key = s.newKey()
		}
		rec.AddedAt = s.now().UTC()
		rec.Embedding = emb.Vector

		if id != "" {
			s.ids[id] = len(s.records)
		}
		s.records = append(s.records, rec)
		result.Added++
	}

	if result.Added > 0 {
		if err := s.rebuildLocked(); err != nil {
			return result, err
		}
		result.Persisted = s.saveLocked()
	}

	return result, embedErr
}

// Clear empties the store, discards the index and removes the snapshot,
// including one that could not be loaded. In-memory state is always
// cleared; the error reports only a failure to remove the persisted snapshot.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()

	if s.dataDir == "" {
		return nil
	}
	if err := storage.RemoveSnapshot(s.dataDir); err != nil {
		return err
	}
	s.unreadable = false
	return nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Stale reports whether the store is in statistics-only mode.
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// DataDir returns the snapshot directory, empty when persistence is disabled.
func (s *Store) DataDir() string {
	return s.dataDir
}

// ModelName returns the name of the embedding model records are embedded with.
func (s *Store) ModelName() string {
	return s.provider.ModelName()
}

// Records returns a copy of the record set in insertion order.
// Embeddings are shared with the store and must not be modified.
func (s *Store) Records() []article.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]article.Article, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given external id.
func (s *Store) Get(id string) (article.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.ids[strings.TrimSpace(id)]
	if !ok {
		return article.Article{}, false
	}
	return s.records[slot], true
}

// Match is a record found by Nearest, with its squared L2 distance.
type Match struct {
	Record   article.Article
	Distance float32
}

// Nearest returns up to k records closest to vec, nearest first.
// An empty store yields an empty slice. Index slots that do not map to a
// record are skipped.
func (s *Store) Nearest(vec []float32, k int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stale {
		return nil, ErrIndexStale
	}

	hits, err := s.index.Search(vec, k)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(hits))
	for _, h := range hits {
		if h.Slot < 0 || h.Slot >= len(s.records) {
			s.logger.Warn("index slot out of range", "slot", h.Slot, "records", len(s.records))
			continue
		}
		matches = append(matches, Match{Record: s.records[h.Slot], Distance: h.Distance})
	}
	return matches, nil
}

// resetLocked empties records and index. Caller must hold the write lock.
func (s *Store) resetLocked() {
	s.records = nil
	s.ids = make(map[string]int)
	s.index.Reset()
	s.stale = false
}

// rebuildLocked rebuilds the index from the record embeddings.
// Caller must hold the write lock.
func (s *Store) rebuildLocked() error {
	vectors := make([][]float32, len(s.records))
	for i := range s.records {
		vectors[i] = s.records[i].Embedding
	}
	if err := s.index.Rebuild(vectors); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	return nil
}

// resetIDsLocked recomputes the id map. The first record with an id owns it.
func (s *Store) resetIDsLocked() {
	s.ids = make(map[string]int, len(s.records))
	for i, r := range s.records {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}
		if _, seen := s.ids[id]; !seen {
			s.ids[id] = i
		}
	}
}
