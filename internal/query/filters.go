package query

import (
	"strings"

	"github.com/matsen/paperindex/internal/article"
)

// Filter keys recognized by ParseFilters.
const (
	KeyPubDateAfter = "pub_date_after"
	KeyAuthor       = "author"
	KeySource       = "source"
)

// Filters restricts search results. Empty fields do not filter.
// All set fields must match.
type Filters struct {
	PubDateAfter string `json:"pub_date_after,omitempty"`
	Author       string `json:"author,omitempty"`
	Source       string `json:"source,omitempty"`
}

// ParseFilters builds Filters from key/value pairs. Unrecognized keys are ignored.
func ParseFilters(m map[string]string) Filters {
	return Filters{
		PubDateAfter: strings.TrimSpace(m[KeyPubDateAfter]),
		Author:       strings.TrimSpace(m[KeyAuthor]),
		Source:       strings.TrimSpace(m[KeySource]),
	}
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f.PubDateAfter == "" && f.Author == "" && f.Source == ""
}

// Match reports whether a passes every set filter.
//
// PubDateAfter keeps records published on or after the given date; records
// with no publication date are kept. Author and Source are case-insensitive
// substring matches.
func (f Filters) Match(a article.Article) bool {
	if f.PubDateAfter != "" && !a.PubDate.IsZero() {
		if a.PubDate.Compare(article.ParsePubDate(f.PubDateAfter)) < 0 {
			return false
		}
	}
	if f.Author != "" && !a.Authors.Contains(f.Author) {
		return false
	}
	if f.Source != "" && !strings.Contains(strings.ToLower(a.Source), strings.ToLower(f.Source)) {
		return false
	}
	return true
}
