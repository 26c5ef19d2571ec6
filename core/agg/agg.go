// Package agg combines dimension scores into a persona-weighted viability
// index, and explains, ranks and compares the result.
package agg

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/huangsam/viability/core/algo"
	"github.com/huangsam/viability/core/country"
	"github.com/huangsam/viability/schema"
)

var (
	// ErrConfigurationMismatch means no score column matches a positive persona weight.
	ErrConfigurationMismatch = errors.New("score columns do not match persona weights")

	// ErrUnknownCountry is returned when a country is not in the score table.
	ErrUnknownCountry = errors.New("country not found in score table")
)

// Aggregator computes composite indices under named weight profiles.
type Aggregator struct {
	personas map[string]map[schema.Dimension]float64
	custom   map[string]struct{}
	logger   *slog.Logger
}

// NewAggregator creates an aggregator with the built-in personas plus custom
// ones. A custom profile named like a built-in replaces it.
func NewAggregator(custom map[string]map[schema.Dimension]float64, logger *slog.Logger) *Aggregator {
	a := &Aggregator{
		personas: make(map[string]map[schema.Dimension]float64, len(schema.AllPersonas)+len(custom)),
		custom:   make(map[string]struct{}, len(custom)),
		logger:   logger,
	}
	for _, p := range schema.AllPersonas {
		a.personas[p] = schema.GetDefaultWeights(p)
	}
	for name, weights := range custom {
		key := normalizePersona(name)
		a.personas[key] = maps.Clone(weights)
		a.custom[key] = struct{}{}
	}
	return a
}

// Personas returns the built-in personas in their usual order followed by
// the remaining custom personas sorted by name.
func (a *Aggregator) Personas() []string {
	out := slices.Clone(schema.AllPersonas)
	var extra []string
	for name := range a.personas {
		if !slices.Contains(schema.AllPersonas, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// ResolvePersona returns the canonical persona name and a copy of its
// weights. Unknown names resolve to the default persona and report fallback.
func (a *Aggregator) ResolvePersona(name string) (string, map[schema.Dimension]float64, bool) {
	key := normalizePersona(name)
	if w, ok := a.personas[key]; ok {
		return key, maps.Clone(w), false
	}
	a.logger.Warn("Unknown persona, using default", "persona", name, "default", schema.DefaultPersona)
	return schema.DefaultPersona, maps.Clone(a.personas[schema.DefaultPersona]), true
}

// NormalizeColumn maps a score column name onto a dimension key.
func NormalizeColumn(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

func normalizePersona(name string) string {
	return NormalizeColumn(name)
}

// plan is the resolved column set and renormalized weights for one table.
type plan struct {
	dims    []schema.Dimension
	columns map[schema.Dimension]string
	weights map[schema.Dimension]float64
	medians map[schema.Dimension]float64
}

func (a *Aggregator) plan(table schema.ScoreTable, persona string, weights map[schema.Dimension]float64) (*plan, error) {
	byKey := make(map[string]string, len(table.Columns))
	for _, col := range table.Columns {
		key := NormalizeColumn(col)
		if _, dup := byKey[key]; !dup {
			byKey[key] = col
		}
	}

	p := &plan{
		columns: make(map[schema.Dimension]string),
		weights: make(map[schema.Dimension]float64),
		medians: make(map[schema.Dimension]float64),
	}
	for _, dim := range slices.Sorted(maps.Keys(weights)) {
		w := weights[dim]
		if !(w > 0) || math.IsInf(w, 0) {
			continue
		}
		col, ok := byKey[NormalizeColumn(string(dim))]
		if !ok {
			continue
		}
		p.dims = append(p.dims, dim)
		p.columns[dim] = col
		p.weights[dim] = w
	}

	if len(p.dims) == 0 {
		a.logger.Error("No score columns match persona weights", "persona", persona, "columns", table.Columns)
		return nil, fmt.Errorf("%w: persona %s", ErrConfigurationMismatch, persona)
	}

	// Scale by the largest weight first so the total cannot overflow.
	var largest, total float64
	for _, dim := range p.dims {
		largest = max(largest, p.weights[dim])
	}
	for _, dim := range p.dims {
		p.weights[dim] /= largest
		total += p.weights[dim]
	}
	for _, dim := range p.dims {
		p.weights[dim] /= total
		var present []float64
		for _, c := range table.Countries {
			if v, ok := table.Get(c, p.columns[dim]); ok {
				present = append(present, v)
			}
		}
		median, ok := algo.Median(present)
		if !ok {
			median = schema.NeutralScore
		}
		p.medians[dim] = median
	}
	return p, nil
}

// value returns the score of a country for a dimension, imputing the median.
func (p *plan) value(table schema.ScoreTable, name string, dim schema.Dimension) (float64, bool) {
	if v, ok := table.Get(name, p.columns[dim]); ok {
		return v, false
	}
	return p.medians[dim], true
}

// Composite computes the index for every country of the table under a persona.
// Unknown personas fall back to the default persona.
func (a *Aggregator) Composite(table schema.ScoreTable, persona string) (schema.CompositeResult, error) {
	name, weights, _ := a.ResolvePersona(persona)
	return a.CompositeWithWeights(table, name, weights)
}

// CompositeWithWeights computes the index under an explicit weight profile.
// Weights need not sum to one; they are renormalized over matching columns.
func (a *Aggregator) CompositeWithWeights(table schema.ScoreTable, persona string, weights map[schema.Dimension]float64) (schema.CompositeResult, error) {
	result := schema.CompositeResult{
		Persona: persona,
		Weights: map[schema.Dimension]float64{},
		Index:   map[string]float64{},
	}
	p, err := a.plan(table, persona, weights)
	if err != nil {
		return result, err
	}
	result.Weights = p.weights

	for _, c := range table.Countries {
		var sum float64
		for _, dim := range p.dims {
			v, imputed := p.value(table, c, dim)
			if imputed {
				if result.Imputed == nil {
					result.Imputed = make(map[string][]schema.Dimension)
				}
				result.Imputed[c] = append(result.Imputed[c], dim)
			}
			sum += v * p.weights[dim]
		}
		result.Index[c] = algo.Clamp(sum, schema.MinScore, schema.MaxScore)
	}
	return result, nil
}

// Rank orders a composite result. Ties are broken by country name.
func Rank(result schema.CompositeResult, ascending bool, limit int) []schema.RankedCountry {
	return algo.RankCountries(result.Index, ascending, limit)
}

// Contributions explains the index of the given countries, or of every
// country in the table when none are given. Each breakdown is sorted by
// weighted contribution, largest first.
func (a *Aggregator) Contributions(table schema.ScoreTable, persona string, countries ...string) ([]schema.ContributionBreakdown, error) {
	name, weights, _ := a.ResolvePersona(persona)
	p, err := a.plan(table, name, weights)
	if err != nil {
		return nil, err
	}

	targets := table.Countries
	if len(countries) > 0 {
		targets = make([]string, 0, len(countries))
		for _, c := range countries {
			resolved, ok := lookupCountry(table, c)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCountry, c)
			}
			targets = append(targets, resolved)
		}
	}

	out := make([]schema.ContributionBreakdown, 0, len(targets))
	for _, c := range targets {
		var index float64
		contribs := make([]schema.Contribution, 0, len(p.dims))
		for _, dim := range p.dims {
			v, imputed := p.value(table, c, dim)
			w := p.weights[dim]
			contribs = append(contribs, schema.Contribution{
				Dimension: dim,
				Raw:       v,
				Weight:    w,
				Weighted:  v * w,
				Imputed:   imputed,
			})
			index += v * w
		}
		index = algo.Clamp(index, schema.MinScore, schema.MaxScore)
		for i := range contribs {
			if index > 0 {
				contribs[i].Percent = contribs[i].Weighted / index * 100
			}
		}
		sort.SliceStable(contribs, func(i, j int) bool {
			if contribs[i].Weighted != contribs[j].Weighted {
				return contribs[i].Weighted > contribs[j].Weighted
			}
			return contribs[i].Dimension < contribs[j].Dimension
		})
		out = append(out, schema.ContributionBreakdown{
			Country:       c,
			Persona:       name,
			Index:         index,
			Label:         schema.GetPlainLabel(index),
			Contributions: contribs,
		})
	}
	return out, nil
}

// lookupCountry finds the table row for a requested spelling.
func lookupCountry(table schema.ScoreTable, requested string) (string, bool) {
	for _, c := range table.Countries {
		if country.Matches(c, requested) {
			return c, true
		}
	}
	return "", false
}

// ComparePersonas computes the index under each persona. An empty list
// compares every known persona. The table is not modified.
func (a *Aggregator) ComparePersonas(table schema.ScoreTable, personas []string) (schema.PersonaComparison, error) {
	if len(personas) == 0 {
		personas = a.Personas()
	}
	cmp := schema.PersonaComparison{
		Countries: slices.Clone(table.Countries),
		Index:     make(map[string]map[string]float64, len(personas)),
	}
	for _, persona := range personas {
		result, err := a.Composite(table, persona)
		if err != nil {
			return schema.PersonaComparison{}, err
		}
		if _, seen := cmp.Index[result.Persona]; seen {
			continue
		}
		cmp.Personas = append(cmp.Personas, result.Persona)
		cmp.Index[result.Persona] = result.Index
	}
	return cmp, nil
}

// topDimensions is how many leading dimensions PersonaInfo reports.
const topDimensions = 3

// PersonaInfo describes a persona and its heaviest dimensions.
func (a *Aggregator) PersonaInfo(name string) (schema.PersonaInfo, error) {
	key := normalizePersona(name)
	weights, ok := a.personas[key]
	if !ok {
		return schema.PersonaInfo{}, fmt.Errorf("unknown persona: %s", name)
	}

	dims := slices.Collect(maps.Keys(weights))
	sort.Slice(dims, func(i, j int) bool {
		if weights[dims[i]] != weights[dims[j]] {
			return weights[dims[i]] > weights[dims[j]]
		}
		return dims[i] < dims[j]
	})
	if len(dims) > topDimensions {
		dims = dims[:topDimensions]
	}

	_, custom := a.custom[key]
	desc, ok := schema.PersonaDescriptions[key]
	if !ok {
		desc = "Custom persona"
	}
	return schema.PersonaInfo{
		Name:          key,
		Description:   desc,
		Weights:       maps.Clone(weights),
		TopDimensions: dims,
		Custom:        custom,
	}, nil
}
