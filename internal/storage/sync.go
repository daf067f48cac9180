package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matsen/paperindex/internal/article"
)

// Keys in the catalog's _meta table.
const (
	metaSnapshotHash = "snapshot_hash"
	metaLastSync     = "last_sync"
)

// SnapshotHash computes a SHA-256 of the snapshot file. A missing snapshot
// hashes as empty content.
func SnapshotHash(dataDir string) (string, error) {
	f, err := os.Open(SnapshotPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256([]byte{})
			return hex.EncodeToString(h[:]), nil
		}
		return "", fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading snapshot: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// StoredHash returns the snapshot hash recorded at the last sync, or "".
func (d *DB) StoredHash() (string, error) {
	return d.getMeta(metaSnapshotHash)
}

// LastSync returns when the catalog was last rebuilt. Zero if never.
func (d *DB) LastSync() (time.Time, error) {
	v, err := d.getMeta(metaLastSync)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

// Sync rebuilds the catalog from records when hash differs from the stored
// snapshot hash. It reports whether a rebuild happened.
func (d *DB) Sync(records []article.Article, hash string) (bool, error) {
	stored, err := d.StoredHash()
	if err != nil {
		return false, fmt.Errorf("reading catalog hash: %w", err)
	}
	if stored == hash {
		return false, nil
	}

	if _, err := d.RebuildAt(records, hash); err != nil {
		return false, err
	}
	return true, nil
}

// RebuildAt rebuilds the catalog unconditionally and records hash as the
// snapshot it reflects.
func (d *DB) RebuildAt(records []article.Article, hash string) (int, error) {
	n, err := d.Rebuild(records)
	if err != nil {
		return 0, err
	}
	if err := d.setMeta(metaSnapshotHash, hash); err != nil {
		return n, fmt.Errorf("storing catalog hash: %w", err)
	}
	if err := d.setMeta(metaLastSync, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return n, fmt.Errorf("storing sync time: %w", err)
	}
	return n, nil
}

func (d *DB) getMeta(key string) (string, error) {
	var v sql.NullString
	err := d.db.QueryRow("SELECT value FROM _meta WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.String, nil
}

func (d *DB) setMeta(key, value string) error {
	_, err := d.db.Exec("INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)", key, value)
	return err
}
