package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.etcd.io/bbolt"
)

// DefaultCacheSize is the number of embeddings held in memory.
const DefaultCacheSize = 1024

var bucketEmbeddings = []byte("embeddings")

// CachedProvider wraps a Provider with a content-addressed cache.
// Keys are the SHA-256 of model name and text, so switching models never
// serves a stale vector. An in-memory LRU serves repeated queries; an optional
// bbolt file keeps ingestion embeddings across runs.
type CachedProvider struct {
	inner  Provider
	memory *lru.Cache[string, []float32]
	db     *bbolt.DB
	logger *slog.Logger
}

// CacheOption configures a CachedProvider.
type CacheOption func(*cacheSettings)

type cacheSettings struct {
	size   int
	dbPath string
	logger *slog.Logger
}

// WithCacheSize sets the in-memory LRU capacity.
func WithCacheSize(n int) CacheOption {
	return func(s *cacheSettings) {
		s.size = n
	}
}

// WithDiskCache persists embeddings in a bbolt database at path.
func WithDiskCache(path string) CacheOption {
	return func(s *cacheSettings) {
		s.dbPath = path
	}
}

// WithCacheLogger sets the logger used to report cache write failures.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(s *cacheSettings) {
		s.logger = logger
	}
}

// NewCachedProvider wraps inner with caching.
func NewCachedProvider(inner Provider, opts ...CacheOption) (*CachedProvider, error) {
	s := cacheSettings{size: DefaultCacheSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}

	memory, err := lru.New[string, []float32](s.size)
	if err != nil {
		return nil, fmt.Errorf("creating lru cache: %w", err)
	}

	c := &CachedProvider{inner: inner, memory: memory, logger: s.logger}
	if s.dbPath == "" {
		return c, nil
	}

	db, err := bbolt.Open(s.dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache bucket: %w", err)
	}
	c.db = db
	return c, nil
}

// Embed returns a cached vector when available, otherwise delegates and caches.
// A failed disk write is logged; the vector is still returned.
func (c *CachedProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	if IsBlank(text) {
		return Zero(c.inner.Dimensions()), nil
	}

	key := c.key(text)
	if vec, ok := c.memory.Get(key); ok {
		return Embedding{Vector: cloneVector(vec)}, nil
	}

	if vec, ok := c.lookupDisk(key); ok {
		c.memory.Add(key, vec)
		return Embedding{Vector: cloneVector(vec)}, nil
	}

	emb, err := c.inner.Embed(ctx, text)
	if err != nil {
		return Embedding{}, err
	}

	vec := cloneVector(emb.Vector)
	c.memory.Add(key, vec)
	if err := c.storeDisk(key, vec); err != nil {
		c.logger.Warn("embedding cache write failed", "error", err)
	}
	return emb, nil
}

// ModelName returns the wrapped provider's model name.
func (c *CachedProvider) ModelName() string {
	return c.inner.ModelName()
}

// Dimensions returns the wrapped provider's dimensions.
func (c *CachedProvider) Dimensions() int {
	return c.inner.Dimensions()
}

// Unwrap returns the wrapped provider.
func (c *CachedProvider) Unwrap() Provider {
	return c.inner
}

// Len returns the number of embeddings held in memory.
func (c *CachedProvider) Len() int {
	return c.memory.Len()
}

// Close releases the disk cache, if any.
func (c *CachedProvider) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *CachedProvider) key(text string) string {
	h := sha256.New()
	h.Write([]byte(c.inner.ModelName()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachedProvider) lookupDisk(key string) ([]float32, bool) {
	if c.db == nil {
		return nil, false
	}
	var vec []float32
	c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEmbeddings).Get([]byte(key))
		if data != nil {
			vec = decodeVector(data)
		}
		return nil
	})
	if vec == nil || len(vec) != c.inner.Dimensions() {
		return nil, false
	}
	return vec, true
}

func (c *CachedProvider) storeDisk(key string, vec []float32) error {
	if c.db == nil {
		return nil
	}
	err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEmbeddings).Put([]byte(key), encodeVector(vec))
	})
	if err != nil {
		return fmt.Errorf("writing embedding cache: %w", err)
	}
	return nil
}

// encodeVector stores float32 values little-endian.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte) []float32 {
	if len(data)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vec
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
