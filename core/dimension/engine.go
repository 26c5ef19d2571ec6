package dimension

import (
	"log/slog"
	"sort"

	"github.com/huangsam/viability/core/algo"
	"github.com/huangsam/viability/core/country"
	"github.com/huangsam/viability/core/dataset"
	"github.com/huangsam/viability/core/extract"
	"github.com/huangsam/viability/schema"
)

// Engine scores one dimension according to its Spec.
type Engine struct {
	spec   Spec
	logger *slog.Logger
}

// NewEngine creates an engine for a validated spec.
func NewEngine(spec Spec, logger *slog.Logger) *Engine {
	return &Engine{
		spec:   spec,
		logger: logger.With("dimension", string(spec.Name)),
	}
}

// Spec returns the spec the engine scores with.
func (e *Engine) Spec() Spec {
	return e.spec
}

// Score computes the dimension score for every requested country. An empty
// country list means every country found in the surviving datasets.
// Datasets are not modified.
func (e *Engine) Score(datasets map[string]schema.Dataset, countries []string) schema.DimensionResult {
	result := schema.DimensionResult{
		Dimension:     e.spec.Name,
		Scores:        make(map[string]float64),
		Features:      make(map[string]schema.FeatureVector),
		Contributions: make(map[string][]schema.MetricContribution),
	}

	entries, reports := e.prepare(datasets, true)
	result.Datasets = reports

	if len(entries) == 0 {
		return e.fallback(result, countries)
	}

	ex := extract.New(entries)
	requested := country.CanonicalList(countries)
	if len(requested) == 0 {
		requested = ex.Countries()
	}

	for _, c := range requested {
		result.Features[c] = e.features(ex, c)
	}
	normalized := e.normalize(requested, result.Features)

	for _, c := range requested {
		score, contribs := e.combine(result.Features[c], normalized[c])
		result.Scores[c] = score
		if len(contribs) > 0 {
			result.Contributions[c] = contribs
		}
	}

	e.logger.Debug("Scored dimension", "countries", len(requested), "datasets", len(entries))
	return result
}

// Countries returns the canonical countries of the datasets that pass
// validation, without scoring them.
func (e *Engine) Countries(datasets map[string]schema.Dataset) []string {
	entries, _ := e.prepare(datasets, false)
	if len(entries) == 0 {
		return nil
	}
	return extract.New(entries).Countries()
}

// prepare cleans and validates every dataset in name order.
func (e *Engine) prepare(datasets map[string]schema.Dataset, logDrops bool) ([]extract.Entry, []schema.DatasetReport) {
	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []extract.Entry
	reports := make([]schema.DatasetReport, 0, len(names))
	for _, name := range names {
		raw := datasets[name]
		if raw.Name == "" {
			raw.Name = name
		}
		clean, report := dataset.Prepare(e.spec.Name, raw, e.spec.Rules)
		reports = append(reports, report)
		if !report.Accepted {
			if !logDrops {
				continue
			}
			e.logger.Warn("Dropped dataset", "dataset", name, "issues", issueKinds(report.Issues))
			continue
		}
		entries = append(entries, extract.Entry{Dataset: clean, Kind: report.Kind})
	}
	return entries, reports
}

// fallback fills scores from the literal table when no dataset survived.
func (e *Engine) fallback(result schema.DimensionResult, countries []string) schema.DimensionResult {
	requested := country.CanonicalList(countries)
	if len(requested) == 0 {
		requested = e.spec.FallbackCountries()
	}
	for _, c := range requested {
		result.Scores[c] = algo.Clamp(e.spec.FallbackScore(c), schema.MinScore, schema.MaxScore)
	}
	result.UsedFallback = true
	e.logger.Warn("No usable data, using fallback scores", "countries", len(requested))
	return result
}

// features resolves the raw value of every metric for one country.
func (e *Engine) features(ex *extract.Extractor, name string) schema.FeatureVector {
	fv := make(schema.FeatureVector)
	for _, m := range e.spec.Metrics {
		for _, src := range m.Sources {
			if obs, ok := ex.GetMetric(name, src.Column, src.Preferred); ok {
				fv[m.Name] = obs
				break
			}
		}
	}
	return fv
}

// normalize scales every metric across the country batch and returns
// country -> metric -> directed score on the 0-100 scale.
func (e *Engine) normalize(countries []string, features map[string]schema.FeatureVector) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(countries))
	for _, c := range countries {
		out[c] = make(map[string]float64)
	}

	for _, m := range e.spec.Metrics {
		var owners []string
		var samples []algo.Sample
		for _, c := range countries {
			obs, ok := features[c][m.Name]
			if !ok {
				continue
			}
			owners = append(owners, c)
			samples = append(samples, algo.Sample{Value: obs.Value, Group: obs.Year})
		}
		if len(samples) == 0 {
			continue
		}
		dir := algo.ResolveDirection(m.Name, m.Direction, e.spec.BetterTokens)
		for i, scaled := range m.Scaler().ScaleBatch(samples) {
			out[owners[i]][m.Name] = schema.MaxScore * algo.ApplyDirection(scaled, dir)
		}
	}
	return out
}

// combine applies the first tier with any present feature.
func (e *Engine) combine(fv schema.FeatureVector, normalized map[string]float64) (float64, []schema.MetricContribution) {
	for _, tier := range e.spec.Tiers() {
		var total float64
		var contribs []schema.MetricContribution
		for _, m := range e.spec.Metrics {
			if m.Tier != tier {
				continue
			}
			v, ok := normalized[m.Name]
			if !ok {
				continue
			}
			weighted := m.Weight * v
			total += weighted
			contribs = append(contribs, schema.MetricContribution{
				Metric:     m.Name,
				Raw:        fv[m.Name].Value,
				Normalized: v,
				Weight:     m.Weight,
				Weighted:   weighted,
				Tier:       tier,
			})
		}
		if len(contribs) > 0 {
			return algo.Clamp(total, schema.MinScore, schema.MaxScore), contribs
		}
	}
	return e.spec.Neutral, nil
}

func issueKinds(issues []schema.QualityIssue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = string(is.Kind)
	}
	return out
}
