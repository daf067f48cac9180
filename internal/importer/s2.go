package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/paperindex/internal/article"
)

// S2Paper is a paper object as returned by the Semantic Scholar Graph API.
type S2Paper struct {
	PaperID     string        `json:"paperId"`
	ExternalIDs S2ExternalIDs `json:"externalIds"`
	Title       string        `json:"title"`
	Abstract    string        `json:"abstract"`
	Authors     []S2Author    `json:"authors"`
	Year        int           `json:"year"`
	Venue       string        `json:"venue"`
	Journal     *struct {
		Name string `json:"name"`
	} `json:"journal"`
	PubDate string `json:"publicationDate"` // YYYY-MM-DD
}

// S2ExternalIDs contains the external identifiers of a paper.
type S2ExternalIDs struct {
	DOI    string `json:"DOI"`
	PubMed string `json:"PubMed"`
	ArXiv  string `json:"ArXiv"`
}

// S2Author is an author entry of an S2Paper.
type S2Author struct {
	Name string `json:"name"`
}

// ParseS2 parses a JSON array of Semantic Scholar papers, or a search
// response object with the papers under "data".
func ParseS2(data []byte) ([]article.Article, []error) {
	var papers []S2Paper
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var resp struct {
			Data []S2Paper `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &resp); err != nil {
			return nil, []error{fmt.Errorf("parsing Semantic Scholar JSON: %w", err)}
		}
		papers = resp.Data
	} else if err := json.Unmarshal(trimmed, &papers); err != nil {
		return nil, []error{fmt.Errorf("parsing Semantic Scholar JSON: %w", err)}
	}

	var articles []article.Article
	var errs []error
	for i, p := range papers {
		if strings.TrimSpace(p.Title) == "" {
			errs = append(errs, fmt.Errorf("entry %d (%s): missing required field 'title'", i+1, p.PaperID))
			continue
		}
		articles = append(articles, s2PaperToArticle(p))
	}
	return articles, errs
}

// s2PaperToArticle converts a paper. The id prefers DOI, then PubMed,
// then arXiv identifiers, then the Semantic Scholar paper id.
func s2PaperToArticle(p S2Paper) article.Article {
	id := p.PaperID
	switch {
	case p.ExternalIDs.DOI != "":
		id = p.ExternalIDs.DOI
	case p.ExternalIDs.PubMed != "":
		id = "PMID:" + p.ExternalIDs.PubMed
	case p.ExternalIDs.ArXiv != "":
		id = "arXiv:" + p.ExternalIDs.ArXiv
	}

	authors := make(article.Authors, 0, len(p.Authors))
	for _, a := range p.Authors {
		if name := citationName(splitName(a.Name)); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) == 0 {
		authors = article.Authors{article.UnknownAuthor}
	}

	source := p.Venue
	if p.Journal != nil && p.Journal.Name != "" {
		source = p.Journal.Name
	}

	date := p.PubDate
	if date == "" && p.Year > 0 {
		date = strconv.Itoa(p.Year)
	}

	return article.Article{
		ID:       id,
		Title:    p.Title,
		Abstract: p.Abstract,
		Authors:  authors,
		Source:   source,
		PubDate:  article.ParsePubDate(date),
	}
}
