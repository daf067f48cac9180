// Package pdf builds candidate articles from PDF files.
package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/matsen/paperindex/internal/article"
)

// DefaultMaxPages is how many leading pages are read for metadata.
const DefaultMaxPages = 2

// ExtractArticle reads the first maxPages pages of a PDF file and builds a
// candidate article from them. maxPages <= 0 uses DefaultMaxPages.
func ExtractArticle(filePath string, maxPages int) (article.Article, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return article.Article{}, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	return articleFromReader(r, maxPages)
}

// ExtractArticleReader is ExtractArticle for PDF data held in memory or
// received over the network.
func ExtractArticleReader(ra io.ReaderAt, size int64, maxPages int) (article.Article, error) {
	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return article.Article{}, fmt.Errorf("reading PDF: %w", err)
	}
	return articleFromReader(r, maxPages)
}

func articleFromReader(r *pdf.Reader, maxPages int) (article.Article, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	text := readText(r, maxPages)
	if strings.TrimSpace(text) == "" {
		return article.Article{}, fmt.Errorf("no extractable text in the first %d pages", maxPages)
	}
	return FromText(text), nil
}

// readText concatenates the plain text of the first maxPages pages.
// Pages that fail to decode are skipped.
func readText(r *pdf.Reader, maxPages int) string {
	if maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String()
}

// FromText builds a candidate article from extracted text: the first
// substantial line is the title, the section under an "Abstract" heading is
// the abstract and the first DOI is the id.
func FromText(text string) article.Article {
	return article.Article{
		ID:       findDOI(text),
		Title:    findTitle(text),
		Abstract: findAbstract(text),
		Authors:  article.Authors{article.UnknownAuthor},
	}
}
