package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/semantic"
	"github.com/matsen/paperindex/internal/storage"
)

// LoadStatus is the outcome of Load.
type LoadStatus int

const (
	// LoadNotFound means there was no snapshot; the store is empty.
	LoadNotFound LoadStatus = iota
	// LoadOK means the snapshot was loaded and the index rebuilt.
	LoadOK
	// LoadStale means the snapshot was loaded but its embeddings do not
	// match the provider. Only Statistics and read access are available.
	LoadStale
	// LoadFailed means the snapshot could not be read. The store is left
	// empty and the unreadable file is moved aside before the next save.
	LoadFailed
)

func (s LoadStatus) String() string {
	switch s {
	case LoadNotFound:
		return "not found"
	case LoadOK:
		return "ok"
	case LoadStale:
		return "stale"
	case LoadFailed:
		return "load failed"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// Save writes the snapshot. It is a no-op when persistence is disabled.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeSnapshot()
}

// Load replaces the store contents with the persisted snapshot and rebuilds
// the index. The returned error explains LoadStale and LoadFailed; it is nil
// for LoadOK and LoadNotFound.
func (s *Store) Load() (LoadStatus, error) {
	if s.dataDir == "" {
		return LoadNotFound, nil
	}

	snap, err := storage.LoadSnapshot(s.dataDir)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			return LoadNotFound, nil
		}
		s.logger.Warn("loading snapshot failed", "dir", s.dataDir, "error", err)
		s.mu.Lock()
		s.resetLocked()
		s.unreadable = true
		s.mu.Unlock()
		return LoadFailed, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.unreadable = false

	s.records = snap.Records
	for i := range s.records {
		if s.records[i].Key == "" {
			s.records[i].Key = s.newKey()
		}
	}
	s.resetIDsLocked()
	s.index.Reset()

	if err := s.checkCompatible(snap); err != nil {
		s.stale = true
		s.logger.Warn("snapshot needs re-embedding", "records", len(s.records), "error", err)
		return LoadStale, err
	}

	s.stale = false
	if err := s.rebuildLocked(); err != nil {
		s.stale = true
		return LoadStale, err
	}

	s.logger.Debug("loaded snapshot", "records", len(s.records), "model", snap.EmbeddingModel)
	return LoadOK, nil
}

// checkCompatible reports whether every record embedding can be indexed
// with the current provider.
func (s *Store) checkCompatible(snap *storage.Snapshot) error {
	wantModel := s.provider.ModelName()
	wantDims := s.provider.Dimensions()

	if snap.EmbeddingModel != "" && snap.EmbeddingModel != wantModel {
		return fmt.Errorf("%w: snapshot has %q, provider is %q", ErrModelMismatch, snap.EmbeddingModel, wantModel)
	}
	if snap.EmbeddingDim != 0 && snap.EmbeddingDim != wantDims {
		return fmt.Errorf("%w: snapshot has %d dimensions, provider has %d", ErrModelMismatch, snap.EmbeddingDim, wantDims)
	}
	for i, r := range snap.Records {
		if len(r.Embedding) != wantDims {
			return fmt.Errorf("%w: record %d has %d dimensions, want %d",
				semantic.ErrDimensionMismatch, i, len(r.Embedding), wantDims)
		}
	}
	return nil
}

// ReembedResult reports the outcome of Reembed.
type ReembedResult struct {
	*semantic.BuildStats
	Persisted bool `json:"persisted"`
}

// Reembed recomputes every record embedding with the current provider,
// rebuilds the index and saves. Records keep their keys and added_at.
// The store is left untouched if any embedding fails or ctx is canceled.
// A failed save is logged and reported as Persisted false.
func (s *Store) Reembed(ctx context.Context, progress semantic.ProgressReporter) (ReembedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	builder := semantic.NewBuilder(s.provider)
	if progress != nil {
		builder.SetProgressReporter(progress)
	}

	vectors, stats, err := builder.Build(ctx, s.records)
	if err != nil {
		return ReembedResult{}, err
	}

	next := make([]article.Article, len(s.records))
	copy(next, s.records)
	for i := range next {
		next[i].Embedding = vectors[i]
	}

	// Rebuild keeps the previous vectors on error.
	if err := s.index.Rebuild(vectors); err != nil {
		return ReembedResult{}, fmt.Errorf("rebuilding index: %w", err)
	}

	s.records = next
	s.stale = false

	return ReembedResult{BuildStats: stats, Persisted: s.saveLocked()}, nil
}

// saveLocked writes the snapshot and reports success. Failures are logged,
// never returned. Caller must hold the lock.
func (s *Store) saveLocked() bool {
	if s.dataDir == "" {
		return false
	}
	if err := s.writeSnapshot(); err != nil {
		s.logger.Warn("saving snapshot failed", "dir", s.dataDir, "error", err)
		return false
	}
	return true
}

func (s *Store) writeSnapshot() error {
	if s.dataDir == "" {
		return nil
	}
	if s.stale {
		return ErrIndexStale
	}
	if s.unreadable {
		moved, err := storage.QuarantineSnapshot(s.dataDir, s.now())
		if err != nil {
			return fmt.Errorf("moving unreadable snapshot aside: %w", err)
		}
		if moved != "" {
			s.logger.Warn("moved unreadable snapshot aside", "path", moved)
		}
		s.unreadable = false
	}
	return storage.SaveSnapshot(s.dataDir, &storage.Snapshot{
		EmbeddingModel: s.provider.ModelName(),
		EmbeddingDim:   s.provider.Dimensions(),
		SavedAt:        s.now().UTC(),
		Records:        s.records,
	})
}
