package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/paperindex/internal/article"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string `json:"_id"`
	Citekey   string `json:"citekey"`
	DOI       string `json:"doi"`
	Title     string `json:"title"`
	Abstract  string `json:"abstract"`
	Journal   string `json:"journal"`
	Published struct {
		Year  FlexibleString `json:"year"`
		Month FlexibleString `json:"month"`
		Day   FlexibleString `json:"day"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
}

// ParsePaperpile parses a Paperpile JSON export into candidate articles.
func ParsePaperpile(data []byte) ([]article.Article, []error) {
	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing Paperpile JSON: %w", err)}
	}

	var articles []article.Article
	var errs []error

	for i, entry := range entries {
		a, err := paperpileEntryToArticle(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, entry.Citekey, err))
			continue
		}
		articles = append(articles, a)
	}

	return articles, errs
}

// paperpileEntryToArticle converts a Paperpile entry. The DOI is the
// article id when present, then the citekey, then the Paperpile id.
func paperpileEntryToArticle(entry PaperpileEntry) (article.Article, error) {
	if strings.TrimSpace(entry.Title) == "" {
		return article.Article{}, fmt.Errorf("missing required field 'title'")
	}

	authors := make(article.Authors, 0, len(entry.Author))
	for _, a := range entry.Author {
		if name := citationName(a.First, a.Last); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) == 0 {
		authors = article.Authors{article.UnknownAuthor}
	}

	pubDate, err := paperpileDate(entry.Published.Year, entry.Published.Month, entry.Published.Day)
	if err != nil {
		return article.Article{}, err
	}

	id := entry.DOI
	if id == "" {
		id = entry.Citekey
	}
	if id == "" {
		id = entry.ID
	}

	return article.Article{
		ID:       id,
		Title:    entry.Title,
		Abstract: entry.Abstract,
		Authors:  authors,
		Source:   entry.Journal,
		PubDate:  pubDate,
	}, nil
}

// paperpileDate renders the published fields as an ISO date of whatever
// precision is available. A missing year yields the zero date.
func paperpileDate(year, month, day FlexibleString) (article.PubDate, error) {
	if year.String() == "" {
		return article.PubDate{}, nil
	}
	y, err := strconv.Atoi(year.String())
	if err != nil {
		return article.PubDate{}, fmt.Errorf("invalid year: %s", year.String())
	}

	raw := fmt.Sprintf("%04d", y)
	if m, err := strconv.Atoi(month.String()); err == nil && m >= 1 && m <= 12 {
		raw += fmt.Sprintf("-%02d", m)
		if d, err := strconv.Atoi(day.String()); err == nil && d >= 1 && d <= 31 {
			raw += fmt.Sprintf("-%02d", d)
		}
	}
	return article.ParsePubDate(raw), nil
}
