// Package semantic provides the nearest-neighbor index over article embeddings.
package semantic

import "time"

// Hit is one search result: an index slot and its squared L2 distance
// to the query. Slots are positions in the vector set the index was built from.
type Hit struct {
	Slot     int     `json:"slot"`
	Distance float32 `json:"distance"`
}

// BuildStats contains statistics from re-embedding a record set.
type BuildStats struct {
	Embedded int           `json:"embedded"`
	Blank    int           `json:"blank"` // Records with no text, embedded as the zero vector
	Model    string        `json:"model"`
	Duration time.Duration `json:"duration"`
}
