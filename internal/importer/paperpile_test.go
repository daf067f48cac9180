package importer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestFlexibleString_String(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string year", `"2026"`, "2026"},
		{"number year", `2026`, "2026"},
		{"null value", `null`, ""},
		{"float number", `2026.0`, "2026.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlexibleString_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array", `[1,2,3]`},
		{"object", `{"key": "value"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			if err := json.Unmarshal([]byte(tt.input), &f); err == nil {
				t.Errorf("UnmarshalJSON() expected error for input %s", tt.input)
			}
		})
	}
}

func TestParsePaperpile_ValidEntry(t *testing.T) {
	data := []byte(`[{
		"_id": "abc123",
		"citekey": "Smith2026-ab",
		"doi": "10.1234/test",
		"title": "Test Paper",
		"abstract": "This is a test abstract",
		"journal": "Test Journal",
		"published": {"year": "2026", "month": "3", "day": "15"},
		"author": [
			{"first": "John Adam", "last": "Smith"},
			{"first": "Jane", "last": "Doe"}
		]
	}]`)

	articles, errs := ParsePaperpile(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePaperpile() returned errors: %v", errs)
	}
	if len(articles) != 1 {
		t.Fatalf("ParsePaperpile() returned %d articles, want 1", len(articles))
	}

	a := articles[0]
	if a.ID != "10.1234/test" {
		t.Errorf("ID = %v, want the DOI", a.ID)
	}
	if a.Title != "Test Paper" {
		t.Errorf("Title = %v, want Test Paper", a.Title)
	}
	if a.Abstract != "This is a test abstract" {
		t.Errorf("Abstract = %v", a.Abstract)
	}
	if a.Source != "Test Journal" {
		t.Errorf("Source = %v, want Test Journal", a.Source)
	}
	if a.Authors.String() != "Smith JA, Doe J" {
		t.Errorf("Authors = %q, want %q", a.Authors.String(), "Smith JA, Doe J")
	}
	if a.PubDate.Raw != "2026-03-15" {
		t.Errorf("PubDate = %q, want 2026-03-15", a.PubDate.Raw)
	}
	if a.PubDate.Year != 2026 || a.PubDate.Month != 3 || a.PubDate.Day != 15 {
		t.Errorf("PubDate parsed as %+v", a.PubDate)
	}
}

func TestParsePaperpile_IDFallback(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"citekey", `[{"_id": "abc", "citekey": "Smith2026", "title": "T"}]`, "Smith2026"},
		{"paperpile id", `[{"_id": "abc", "title": "T"}]`, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			articles, errs := ParsePaperpile([]byte(tt.data))
			if len(errs) > 0 {
				t.Fatalf("ParsePaperpile() returned errors: %v", errs)
			}
			if articles[0].ID != tt.want {
				t.Errorf("ID = %v, want %v", articles[0].ID, tt.want)
			}
		})
	}
}

func TestParsePaperpile_OptionalFields(t *testing.T) {
	data := []byte(`[{"_id": "abc", "title": "No authors, no date"}]`)

	articles, errs := ParsePaperpile(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePaperpile() returned errors: %v", errs)
	}
	a := articles[0]
	if len(a.Authors) != 1 || a.Authors[0] != "Unknown" {
		t.Errorf("Authors = %v, want [Unknown]", a.Authors)
	}
	if !a.PubDate.IsZero() {
		t.Errorf("PubDate = %+v, want zero", a.PubDate)
	}
}

func TestParsePaperpile_MissingTitle(t *testing.T) {
	data := `[{"_id": "abc", "published": {"year": "2026"}, "author": [{"first": "John", "last": "Smith"}]}]`
	articles, errs := ParsePaperpile([]byte(data))
	if len(errs) == 0 {
		t.Errorf("ParsePaperpile() expected error, got articles: %+v", articles)
	}
}

func TestParsePaperpile_InvalidYear(t *testing.T) {
	data := []byte(`[{
		"_id": "abc123",
		"title": "Test Paper",
		"published": {"year": "invalid"},
		"author": [{"first": "John", "last": "Smith"}]
	}]`)

	articles, errs := ParsePaperpile(data)
	if len(errs) == 0 {
		t.Errorf("ParsePaperpile() expected error for invalid year, got articles: %+v", articles)
	}
}

func TestParsePaperpile_NumericYearMonth(t *testing.T) {
	// Paperpile exports both string and numeric dates
	data := []byte(`[{
		"_id": "abc123",
		"title": "Test Paper",
		"published": {"year": 2026, "month": 6},
		"author": [{"first": "John", "last": "Smith"}]
	}]`)

	articles, errs := ParsePaperpile(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePaperpile() returned errors: %v", errs)
	}
	if articles[0].PubDate.Raw != "2026-06" {
		t.Errorf("PubDate = %q, want 2026-06", articles[0].PubDate.Raw)
	}
}

func TestParsePaperpile_InvalidJSON(t *testing.T) {
	articles, errs := ParsePaperpile([]byte(`not valid json`))
	if len(errs) == 0 {
		t.Errorf("ParsePaperpile() expected error for invalid JSON, got articles: %+v", articles)
	}
}

func TestParsePaperpile_PartialErrors(t *testing.T) {
	data := []byte(`[
		{"_id": "1", "citekey": "Valid2026", "title": "Valid", "published": {"year": "2026"}, "author": [{"last": "Valid"}]},
		{"_id": "2", "citekey": "Invalid", "title": "", "published": {"year": "2026"}, "author": [{"last": "Invalid"}]},
		{"_id": "3", "citekey": "AlsoValid2026", "title": "Also Valid", "published": {"year": "2025"}, "author": [{"last": "Also"}]}
	]`)

	articles, errs := ParsePaperpile(data)
	if len(articles) != 2 {
		t.Errorf("ParsePaperpile() returned %d valid articles, want 2", len(articles))
	}
	if len(errs) != 1 {
		t.Errorf("ParsePaperpile() returned %d errors, want 1", len(errs))
	}
}

func TestParsePaperpile_RealTestData(t *testing.T) {
	testFile := filepath.Join("..", "..", "testdata", "paperpile_sample.json")
	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Skipf("Test data file not found: %v", err)
	}

	articles, errs := ParsePaperpile(data)
	if len(errs) > 0 {
		t.Errorf("ParsePaperpile() returned %d errors parsing real test data: %v", len(errs), errs)
	}
	if len(articles) == 0 {
		t.Fatal("ParsePaperpile() returned 0 articles from test data")
	}
	if articles[0].ID == "" || articles[0].Title == "" {
		t.Errorf("first article incomplete: %+v", articles[0])
	}
}

func TestParsePaperpile_AuthorWithOnlyLast(t *testing.T) {
	// Corporate authors have only a last name
	data := []byte(`[{
		"_id": "abc123",
		"title": "Test Paper",
		"author": [{"last": "WHO Consortium"}]
	}]`)

	articles, errs := ParsePaperpile(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePaperpile() returned errors: %v", errs)
	}
	if articles[0].Authors[0] != "WHO Consortium" {
		t.Errorf("Authors[0] = %v, want WHO Consortium", articles[0].Authors[0])
	}
}
