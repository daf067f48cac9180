// Package importer turns export files from reference managers and search
// tools into candidate articles for the record store.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/storage"
)

// Format names an input file format.
type Format string

// Supported formats.
const (
	FormatAuto      Format = "auto"
	FormatJSON      Format = "json"      // array of article objects
	FormatJSONL     Format = "jsonl"     // one article object per line
	FormatPaperpile Format = "paperpile" // Paperpile JSON export
	FormatS2        Format = "s2"        // Semantic Scholar paper objects
)

// Formats lists the formats accepted by ParseFormat.
var Formats = []Format{FormatAuto, FormatJSON, FormatJSONL, FormatPaperpile, FormatS2}

// ParseFormat validates a format name. The empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatAuto, nil
	}
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// DetectFormat guesses the format of a file from its name and contents.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatJSON
	}
	if trimmed[0] == '{' {
		// Several objects in a row are JSON Lines
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return FormatJSONL
		}
		// Semantic Scholar search responses wrap papers in "data"
		if has(fields, "data") {
			return FormatS2
		}
		return FormatJSON
	}

	var first []map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &first); err != nil || len(first) == 0 {
		return FormatJSON
	}
	switch {
	case has(first[0], "citekey") || has(first[0], "_id"):
		return FormatPaperpile
	case has(first[0], "paperId"):
		return FormatS2
	default:
		return FormatJSON
	}
}

func has(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

// Parse converts data in the given format into articles. Entries that
// cannot be converted are reported in the error slice and skipped; a
// file-level parse failure yields no articles and a single error.
func Parse(data []byte, format Format) ([]article.Article, []error) {
	switch format {
	case FormatJSON:
		return parseJSONArray(data)
	case FormatJSONL:
		articles, err := storage.ReadJSONL(bytes.NewReader(data))
		if err != nil {
			return nil, []error{err}
		}
		return validate(articles)
	case FormatPaperpile:
		return ParsePaperpile(data)
	case FormatS2:
		return ParseS2(data)
	default:
		return nil, []error{fmt.Errorf("unsupported format %q", format)}
	}
}

// ReadFile reads and parses one file. FormatAuto detects the format.
func ReadFile(path string, format Format) ([]article.Article, Format, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, format, []error{fmt.Errorf("reading %s: %w", path, err)}
	}
	if format == FormatAuto || format == "" {
		format = DetectFormat(path, data)
	}
	articles, errs := Parse(data, format)
	return articles, format, errs
}

// ExpandGlobs resolves file patterns such as "exports/**/*.json" and drops
// paths matching any exclude pattern. Patterns without glob characters are
// returned as-is so a missing file surfaces as a read error later. Results
// are de-duplicated and each pattern's matches are sorted.
func ExpandGlobs(patterns, excludes []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(path string) {
		if seen[path] || excluded(path, excludes) {
			return
		}
		seen[path] = true
		paths = append(paths, path)
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		sort.Strings(matches)

		found := 0
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			found++
			add(m)
		}
		if found == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", pattern)
		}
	}
	return paths, nil
}

func excluded(path string, excludes []string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range excludes {
		if matched, err := doublestar.Match(pattern, slashed); err == nil && matched {
			return true
		}
	}
	return false
}

func parseJSONArray(data []byte) ([]article.Article, []error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var articles []article.Article
	if trimmed[0] == '{' {
		var single article.Article
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, []error{fmt.Errorf("parsing JSON: %w", err)}
		}
		articles = []article.Article{single}
	} else if err := json.Unmarshal(trimmed, &articles); err != nil {
		return nil, []error{fmt.Errorf("parsing JSON: %w", err)}
	}
	return validate(articles)
}

// validate drops entries with neither title nor abstract and strips any
// embedding supplied by the input.
func validate(in []article.Article) ([]article.Article, []error) {
	var out []article.Article
	var errs []error
	for i, a := range in {
		if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Abstract) == "" {
			errs = append(errs, fmt.Errorf("entry %d: missing both title and abstract", i+1))
			continue
		}
		a.Key = ""
		a.Embedding = nil
		if len(a.Authors) == 0 {
			a.Authors = article.Authors{article.UnknownAuthor}
		}
		out = append(out, a)
	}
	return out, errs
}
