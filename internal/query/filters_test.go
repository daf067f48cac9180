package query

import (
	"testing"

	"github.com/matsen/paperindex/internal/article"
)

func TestParseFilters(t *testing.T) {
	f := ParseFilters(map[string]string{
		"pub_date_after": " 2020 ",
		"author":         "Smith",
		"source":         "",
		"journal":        "ignored",
		"year":           "ignored",
	})
	want := Filters{PubDateAfter: "2020", Author: "Smith"}
	if f != want {
		t.Errorf("ParseFilters() = %+v, want %+v", f, want)
	}
	if f.IsEmpty() {
		t.Error("IsEmpty() = true")
	}
	if !ParseFilters(map[string]string{"bogus": "x"}).IsEmpty() {
		t.Error("unknown keys should leave filters empty")
	}
}

func TestFiltersMatch(t *testing.T) {
	a := article.Article{
		Authors: article.ParseAuthors("Smith J, Doe A"),
		Source:  "The Lancet",
		PubDate: article.ParsePubDate("2021-03-10"),
	}
	undated := article.Article{Authors: article.ParseAuthors("Smith J"), Source: "The Lancet"}

	tests := []struct {
		name    string
		filters Filters
		article article.Article
		want    bool
	}{
		{"empty", Filters{}, a, true},
		{"author case-insensitive", Filters{Author: "DOE"}, a, true},
		{"author miss", Filters{Author: "Lee"}, a, false},
		{"source substring", Filters{Source: "lancet"}, a, true},
		{"source miss", Filters{Source: "Nature"}, a, false},
		{"date after", Filters{PubDateAfter: "2020-12-31"}, a, true},
		{"date same day", Filters{PubDateAfter: "2021-03-10"}, a, true},
		{"date before", Filters{PubDateAfter: "2021-04"}, a, false},
		{"year only", Filters{PubDateAfter: "2021"}, a, true},
		{"undated kept", Filters{PubDateAfter: "2099"}, undated, true},
		{"all must pass", Filters{Author: "smith", Source: "nature"}, a, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Match(tt.article); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}
