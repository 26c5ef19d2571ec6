// Package extract resolves a metric value for a country from a set of
// classified datasets, preferring the dataset kinds a metric names first.
package extract

import (
	"sort"
	"strings"

	"github.com/huangsam/viability/core/country"
	"github.com/huangsam/viability/core/dataset"
	"github.com/huangsam/viability/schema"
)

// Entry is a cleaned dataset together with its classified kind.
type Entry struct {
	Dataset schema.Dataset
	Kind    schema.DatasetKind
}

// source is an indexed dataset. The latest maps hold the row index of the
// most recent row per country spelling.
type source struct {
	name      string
	kind      schema.DatasetKind
	data      schema.Dataset
	yearCol   int
	byRaw     map[string]int
	canonical map[string]int
}

// Extractor answers metric lookups over a fixed set of datasets.
// It is built once per dimension per pass and is safe for concurrent reads.
type Extractor struct {
	sources []*source
}

// New indexes the entries. Datasets without a country-like column are skipped.
func New(entries []Entry) *Extractor {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Dataset.Name < sorted[j].Dataset.Name
	})

	ex := &Extractor{}
	for _, e := range sorted {
		if src := index(e); src != nil {
			ex.sources = append(ex.sources, src)
		}
	}
	return ex
}

func index(e Entry) *source {
	ds := e.Dataset
	countryCol := dataset.CountryColumn(ds)
	if countryCol < 0 {
		return nil
	}
	src := &source{
		name:      ds.Name,
		kind:      e.Kind,
		data:      ds,
		yearCol:   ds.ColumnIndex(dataset.YearColumn),
		byRaw:     make(map[string]int),
		canonical: make(map[string]int),
	}
	for r := range ds.Rows {
		raw := strings.TrimSpace(ds.At(r, countryCol).String())
		if raw == "" {
			continue
		}
		src.keepLatest(src.byRaw, raw, r)
		src.keepLatest(src.canonical, country.Canonical(raw), r)
	}
	return src
}

// keepLatest records row r under key when it is at least as recent as the
// current entry. Later rows win ties; rows without a year lose to rows with one.
func (s *source) keepLatest(m map[string]int, key string, r int) {
	prev, ok := m[key]
	if !ok || s.yearOf(r) >= s.yearOf(prev) {
		m[key] = r
	}
}

// yearOf returns the row year, or a sentinel below any real year.
func (s *source) yearOf(r int) float64 {
	if s.yearCol < 0 {
		return 0
	}
	if v, ok := s.data.At(r, s.yearCol).Float(); ok {
		return v
	}
	return -1 << 31
}

// latestRow finds the latest row for a requested country using the matching
// order canonical, exact, stripped, then canonical equality of row values.
func (s *source) latestRow(requested string) (int, bool) {
	for _, c := range country.Candidates(requested) {
		if r, ok := s.byRaw[c]; ok {
			return r, true
		}
	}
	r, ok := s.canonical[country.Canonical(requested)]
	return r, ok
}

func (s *source) lookup(requested, column string) (schema.Observation, bool) {
	col := s.data.ColumnIndex(column)
	if col < 0 {
		return schema.Observation{}, false
	}
	r, ok := s.latestRow(requested)
	if !ok {
		return schema.Observation{}, false
	}
	v, ok := s.data.At(r, col).Float()
	if !ok {
		return schema.Observation{}, false
	}
	obs := schema.Observation{Value: v, Dataset: s.name, Column: column}
	if s.yearCol >= 0 {
		if y, ok := s.data.At(r, s.yearCol).Float(); ok {
			obs.Year = int(y)
			obs.HasYear = true
		}
	}
	return obs, true
}

// GetMetric returns the value of column for a country. Datasets of each
// preferred kind are tried in order, then every dataset holding the column.
// The second result is false when no dataset has a non-missing value.
func (e *Extractor) GetMetric(name, column string, preferred []schema.DatasetKind) (schema.Observation, bool) {
	for _, kind := range preferred {
		for _, src := range e.sources {
			if src.kind != kind {
				continue
			}
			if obs, ok := src.lookup(name, column); ok {
				return obs, true
			}
		}
	}
	for _, src := range e.sources {
		if obs, ok := src.lookup(name, column); ok {
			return obs, true
		}
	}
	return schema.Observation{}, false
}

// Countries returns the canonical countries present across all datasets, sorted.
func (e *Extractor) Countries() []string {
	seen := make(map[string]struct{})
	for _, src := range e.sources {
		for c := range src.canonical {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of indexed datasets.
func (e *Extractor) Len() int {
	return len(e.sources)
}
