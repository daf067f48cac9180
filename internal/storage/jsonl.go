package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matsen/paperindex/internal/article"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadJSONL reads one article per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]article.Article, error) {
	var articles []article.Article
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var a article.Article
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		articles = append(articles, a)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}

	return articles, nil
}

// ReadAll reads all articles from a JSONL file.
// A missing file yields an empty slice.
func ReadAll(path string) ([]article.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening articles file: %w", err)
	}
	defer f.Close()

	return ReadJSONL(f)
}

// WriteJSONL writes one JSON value per line.
func WriteJSONL[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for i, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("encoding item %d: %w", i, err)
		}
	}
	return nil
}
