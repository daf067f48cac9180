package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/matsen/paperindex/internal/article"
)

func TestStatistics_SingleRecord(t *testing.T) {
	s := newTestStore(t, "")
	s.Add(context.Background(), []article.Article{vaccineRecord()})

	got := s.Statistics(0)
	want := Stats{
		TotalPapers:       1,
		TotalJournals:     1,
		TotalAuthors:      1,
		TopJournals:       []SourceCount{{Source: "J Med", Count: 1}},
		YearsDistribution: []YearCount{{Year: "2023", Count: 1}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Statistics() = %+v, want %+v", got, want)
	}
}

func TestStatistics_Empty(t *testing.T) {
	s := newTestStore(t, "")
	got := s.Statistics(10)
	if got.TotalPapers != 0 {
		t.Errorf("TotalPapers = %d, want 0", got.TotalPapers)
	}
	if got.TopJournals != nil || got.YearsDistribution != nil {
		t.Errorf("empty store should omit distributions, got %+v", got)
	}
}

func TestStatistics_Aggregates(t *testing.T) {
	s := newTestStore(t, "")
	records := []article.Article{
		{Title: "a", Source: "Cell", Authors: article.ParseAuthors("Unknown"), PubDate: article.ParsePubDate("2020")},
		{Title: "b", Source: "Nature", Authors: article.ParseAuthors("Lee K, Smith J"), PubDate: article.ParsePubDate("2019-05")},
		{Title: "c", Source: "Cell", Authors: article.ParseAuthors("Smith J"), PubDate: article.ParsePubDate("n.d.")},
		{Title: "d", Source: "Nature", Authors: article.ParseAuthors("unknown")},
		{Title: "e", Source: "", Authors: article.ParseAuthors("Doe A"), PubDate: article.ParsePubDate("2020 Mar")},
		{Title: "f", Source: "Science", PubDate: article.ParsePubDate("2021")},
	}
	s.Add(context.Background(), records)

	got := s.Statistics(0)
	if got.TotalPapers != 6 {
		t.Errorf("TotalPapers = %d, want 6", got.TotalPapers)
	}
	if got.TotalJournals != 3 {
		t.Errorf("TotalJournals = %d, want 3", got.TotalJournals)
	}
	if got.TotalAuthors != 3 {
		t.Errorf("TotalAuthors = %d, want 3 (Unknown excluded)", got.TotalAuthors)
	}

	// Cell and Nature tie at 2; Cell was seen first
	wantJournals := []SourceCount{{"Cell", 2}, {"Nature", 2}, {"Science", 1}}
	if !reflect.DeepEqual(got.TopJournals, wantJournals) {
		t.Errorf("TopJournals = %v, want %v", got.TopJournals, wantJournals)
	}

	wantYears := []YearCount{{"2019", 1}, {"2020", 2}, {"2021", 1}}
	if !reflect.DeepEqual(got.YearsDistribution, wantYears) {
		t.Errorf("YearsDistribution = %v, want %v", got.YearsDistribution, wantYears)
	}
}

func TestStatistics_TopN(t *testing.T) {
	s := newTestStore(t, "")
	var records []article.Article
	for _, src := range []string{"A", "B", "B", "C", "C", "C"} {
		records = append(records, article.Article{Title: "t", Source: src})
	}
	s.Add(context.Background(), records)

	got := s.Statistics(2)
	want := []SourceCount{{"C", 3}, {"B", 2}}
	if !reflect.DeepEqual(got.TopJournals, want) {
		t.Errorf("TopJournals = %v, want %v", got.TopJournals, want)
	}
	if got.TotalJournals != 3 {
		t.Errorf("TotalJournals = %d, want 3", got.TotalJournals)
	}
}
