package store

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultTopN is the number of sources reported by Statistics.
const DefaultTopN = 10

// SourceCount is a source and how many records cite it.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// YearCount is a publication year and how many records carry it.
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// Stats is the aggregate view of the record set.
type Stats struct {
	TotalPapers       int           `json:"total_papers"`
	TotalJournals     int           `json:"total_journals"`
	TotalAuthors      int           `json:"total_authors"`
	TopJournals       []SourceCount `json:"top_journals,omitempty"`
	YearsDistribution []YearCount   `json:"years_distribution,omitempty"`
	Stale             bool          `json:"stale,omitempty"`
}

// Statistics aggregates the record set. Sources with equal counts keep the
// order in which they were first seen. Years are ascending; records with
// no numeric year are left out of the distribution. topN <= 0 uses DefaultTopN.
func (s *Store) Statistics(topN int) Stats {
	if topN <= 0 {
		topN = DefaultTopN
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalPapers: len(s.records), Stale: s.stale}
	if len(s.records) == 0 {
		return stats
	}

	var sources []SourceCount
	sourceSlot := make(map[string]int)
	authors := make(map[string]struct{})
	years := make(map[int]int)

	for _, r := range s.records {
		if src := strings.TrimSpace(r.Source); src != "" {
			if i, ok := sourceSlot[src]; ok {
				sources[i].Count++
			} else {
				sourceSlot[src] = len(sources)
				sources = append(sources, SourceCount{Source: src, Count: 1})
			}
		}

		for _, a := range r.Authors.Known() {
			authors[a] = struct{}{}
		}

		if r.PubDate.HasYear() {
			years[r.PubDate.Year]++
		}
	}

	stats.TotalJournals = len(sources)
	stats.TotalAuthors = len(authors)

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Count > sources[j].Count
	})
	if len(sources) > topN {
		sources = sources[:topN]
	}
	stats.TopJournals = sources

	if len(years) > 0 {
		keys := make([]int, 0, len(years))
		for y := range years {
			keys = append(keys, y)
		}
		sort.Ints(keys)
		for _, y := range keys {
			stats.YearsDistribution = append(stats.YearsDistribution, YearCount{
				Year:  strconv.Itoa(y),
				Count: years[y],
			})
		}
	}

	return stats
}
