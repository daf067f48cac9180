// Package storage handles data persistence: the JSON record snapshot,
// JSONL input files and the SQLite catalog.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matsen/paperindex/internal/article"
)

// Errors returned by snapshot operations.
var (
	ErrSnapshotNotFound   = errors.New("snapshot not found")
	ErrCorruptSnapshot    = errors.New("snapshot is corrupt")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

const (
	// SnapshotFileName is the name of the record snapshot file.
	SnapshotFileName = "articles.json"

	// CurrentSnapshotVersion is the format version for compatibility checking.
	// Increment this when making breaking changes to the snapshot format.
	CurrentSnapshotVersion = 1
)

// Snapshot is the persisted state of a record store: the ordered records
// and the identity of the model that embedded them. The similarity index
// is never persisted; it is rebuilt from the record embeddings.
type Snapshot struct {
	Version        int               `json:"version"`
	EmbeddingModel string            `json:"embedding_model,omitempty"`
	EmbeddingDim   int               `json:"embedding_dim,omitempty"`
	SavedAt        time.Time         `json:"saved_at"`
	Records        []article.Article `json:"records"`
}

// SnapshotPath returns the path to the snapshot file in dataDir.
func SnapshotPath(dataDir string) string {
	return filepath.Join(dataDir, SnapshotFileName)
}

// SaveSnapshot writes the snapshot to dataDir. The file is written to a
// temporary name and renamed into place, so readers see either the old or
// the new snapshot, never a partial one.
func SaveSnapshot(dataDir string, snap *Snapshot) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if snap.Version == 0 {
		snap.Version = CurrentSnapshotVersion
	}
	if snap.Records == nil {
		snap.Records = []article.Article{}
	}

	f, err := os.CreateTemp(dataDir, SnapshotFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := f.Name()

	if err := json.NewEncoder(f).Encode(snap); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, SnapshotPath(dataDir)); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// LoadSnapshot reads the snapshot from dataDir.
// Returns ErrSnapshotNotFound if no snapshot has been saved yet.
//
// A bare JSON array of records is accepted as a snapshot without a header;
// its EmbeddingDim is inferred from the first record with an embedding and
// its EmbeddingModel is left empty.
func LoadSnapshot(dataDir string) (*Snapshot, error) {
	data, err := os.ReadFile(SnapshotPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorruptSnapshot)
	}

	var snap Snapshot
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &snap.Records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		snap.EmbeddingDim = inferDimensions(snap.Records)
	case '{':
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		if snap.Version > CurrentSnapshotVersion {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, snap.Version, CurrentSnapshotVersion)
		}
		if snap.EmbeddingDim == 0 {
			snap.EmbeddingDim = inferDimensions(snap.Records)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected leading byte %q", ErrCorruptSnapshot, trimmed[0])
	}

	if snap.Records == nil {
		snap.Records = []article.Article{}
	}
	return &snap, nil
}

// RemoveSnapshot deletes the snapshot. A missing snapshot is not an error.
func RemoveSnapshot(dataDir string) error {
	err := os.Remove(SnapshotPath(dataDir))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}

// QuarantineSnapshot renames the snapshot to "<name>.corrupt-<timestamp>"
// and returns the new path. A missing snapshot is not an error and yields "".
func QuarantineSnapshot(dataDir string, at time.Time) (string, error) {
	src := SnapshotPath(dataDir)
	dst := fmt.Sprintf("%s.corrupt-%s", src, at.UTC().Format("20060102T150405Z"))
	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("renaming snapshot: %w", err)
	}
	return dst, nil
}

// SnapshotSize returns the size of the snapshot file in bytes.
func SnapshotSize(dataDir string) (int64, error) {
	info, err := os.Stat(SnapshotPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrSnapshotNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

func inferDimensions(records []article.Article) int {
	for _, r := range records {
		if len(r.Embedding) > 0 {
			return len(r.Embedding)
		}
	}
	return 0
}
