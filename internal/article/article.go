// Package article defines the core domain types for retrievable article records.
package article

import (
	"strings"
	"time"
)

// Article is one retrievable unit: article metadata plus its embedding.
type Article struct {
	// Identity
	Key string `json:"key,omitempty"` // Handle stamped at ingestion
	ID  string `json:"id,omitempty"`  // External identifier (deduplication key when present)

	// Metadata
	Title    string  `json:"title"`
	Abstract string  `json:"abstract"`
	Authors  Authors `json:"authors"`
	Source   string  `json:"source"` // Journal or venue name
	PubDate  PubDate `json:"pub_date"`

	// Ingestion
	AddedAt   time.Time `json:"added_at"`
	Embedding []float32 `json:"embedding"`
}

// EmbeddingText returns the text an article is embedded from:
// the title and abstract joined by a single space.
func (a Article) EmbeddingText() string {
	return a.Title + " " + a.Abstract
}

// HasID reports whether the article carries an external identifier.
func (a Article) HasID() bool {
	return strings.TrimSpace(a.ID) != ""
}

// Record is the caller-facing view of an article. It never carries the embedding.
type Record struct {
	Key      string    `json:"key,omitempty"`
	ID       string    `json:"id,omitempty"`
	Title    string    `json:"title"`
	Abstract string    `json:"abstract"`
	Authors  Authors   `json:"authors"`
	Source   string    `json:"source"`
	PubDate  PubDate   `json:"pub_date"`
	AddedAt  time.Time `json:"added_at"`
}

// Result is a Record ranked by a search.
type Result struct {
	Record
	Score float32 `json:"score"` // Squared L2 distance, smaller is more similar
}

// Public builds a display-only copy of the article.
func (a Article) Public() Record {
	authors := make(Authors, len(a.Authors))
	copy(authors, a.Authors)
	return Record{
		Key:      a.Key,
		ID:       a.ID,
		Title:    a.Title,
		Abstract: a.Abstract,
		Authors:  authors,
		Source:   a.Source,
		PubDate:  a.PubDate,
		AddedAt:  a.AddedAt,
	}
}

// View builds a display-only copy of the article with the given score attached.
func (a Article) View(score float32) Result {
	return Result{Record: a.Public(), Score: score}
}
