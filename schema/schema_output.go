package schema

import (
	"slices"
	"time"
)

// Observation is one raw metric value resolved for a country.
type Observation struct {
	Value   float64 `json:"value"`
	Year    int     `json:"year,omitempty"`
	HasYear bool    `json:"-"`
	Dataset string  `json:"dataset"`
	Column  string  `json:"column"`
}

// FeatureVector maps metric names to the raw values resolved for one country.
type FeatureVector map[string]Observation

// MetricContribution explains how one metric moved a dimension score.
type MetricContribution struct {
	Metric     string  `json:"metric"`
	Raw        float64 `json:"raw"`
	Normalized float64 `json:"normalized"` // 0-100 after direction is applied
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Tier       int     `json:"tier"`
}

// QualityIssue is a single data-quality finding for a dataset.
type QualityIssue struct {
	Kind     IssueKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Columns  []string  `json:"columns,omitempty"`
	Detail   string    `json:"detail"`
}

// DatasetReport is the validation outcome for one dataset.
type DatasetReport struct {
	Dimension Dimension      `json:"dimension"`
	Dataset   string         `json:"dataset"`
	Kind      DatasetKind    `json:"kind,omitempty"`
	Rows      int            `json:"rows"`
	Columns   int            `json:"columns"`
	Issues    []QualityIssue `json:"issues,omitempty"`
	Accepted  bool           `json:"accepted"`
}

// DimensionResult is the output of one dimension scorer for a country batch.
type DimensionResult struct {
	Dimension     Dimension                       `json:"dimension"`
	Scores        map[string]float64              `json:"scores"`
	Features      map[string]FeatureVector        `json:"features,omitempty"`
	Contributions map[string][]MetricContribution `json:"contributions,omitempty"`
	Datasets      []DatasetReport                 `json:"datasets,omitempty"`
	UsedFallback  bool                            `json:"used_fallback"`
}

// ScoreTable holds dimension scores per country. Absent entries are missing.
type ScoreTable struct {
	Countries []string                      `json:"countries"`
	Columns   []string                      `json:"columns"`
	Values    map[string]map[string]float64 `json:"values"`
}

// NewScoreTable creates an empty table for the given countries and columns.
func NewScoreTable(countries []string, columns []string) ScoreTable {
	return ScoreTable{
		Countries: slices.Clone(countries),
		Columns:   slices.Clone(columns),
		Values:    make(map[string]map[string]float64, len(countries)),
	}
}

// Set stores a score for a country and column.
func (t *ScoreTable) Set(country, column string, v float64) {
	if t.Values == nil {
		t.Values = make(map[string]map[string]float64)
	}
	row, ok := t.Values[country]
	if !ok {
		row = make(map[string]float64)
		t.Values[country] = row
	}
	row[column] = v
}

// Get returns the score for a country and column, if present.
func (t ScoreTable) Get(country, column string) (float64, bool) {
	row, ok := t.Values[country]
	if !ok {
		return 0, false
	}
	v, ok := row[column]
	return v, ok
}

// CompositeResult holds the persona-weighted index for a batch of countries.
type CompositeResult struct {
	Persona string                 `json:"persona"`
	Weights map[Dimension]float64  `json:"weights"` // renormalized over the intersected dimensions
	Index   map[string]float64     `json:"index"`
	Imputed map[string][]Dimension `json:"imputed,omitempty"` // dimensions filled with the batch median
}

// Contribution explains how one dimension moved a composite index.
type Contribution struct {
	Dimension Dimension `json:"dimension"`
	Raw       float64   `json:"raw"`
	Weight    float64   `json:"weight"`
	Weighted  float64   `json:"weighted"`
	Percent   float64   `json:"percent"`
	Imputed   bool      `json:"imputed,omitempty"`
}

// ContributionBreakdown lists the contributions for one country.
type ContributionBreakdown struct {
	Country       string         `json:"country"`
	Persona       string         `json:"persona"`
	Index         float64        `json:"index"`
	Label         string         `json:"label"`
	Contributions []Contribution `json:"contributions"`
}

// RankedCountry is a country with its composite index and position.
type RankedCountry struct {
	Rank    int     `json:"rank"`
	Country string  `json:"country"`
	Index   float64 `json:"index"`
	Label   string  `json:"label"`
}

// PassResult is the output of a full scoring pass.
type PassResult struct {
	RunID           string                        `json:"run_id"`
	Persona         string                        `json:"persona"`
	PersonaFallback bool                          `json:"persona_fallback,omitempty"`
	Countries       []string                      `json:"countries"`
	Dimensions      map[Dimension]DimensionResult `json:"dimensions"`
	Table           ScoreTable                    `json:"table"`
	Composite       CompositeResult               `json:"composite"`
	Ranked          []RankedCountry               `json:"ranked"`
	Completeness    map[Dimension]float64         `json:"completeness"`
	Warnings        []string                      `json:"warnings,omitempty"`
	Duration        time.Duration                 `json:"duration_ns"`
}

// DroppedDatasets returns the reports of every dataset rejected during the pass.
func (p PassResult) DroppedDatasets() []DatasetReport {
	var dropped []DatasetReport
	for _, dim := range AllDimensions {
		for _, r := range p.Dimensions[dim].Datasets {
			if !r.Accepted {
				dropped = append(dropped, r)
			}
		}
	}
	return dropped
}

// GetPlainLabel returns a plain text label indicating the viability risk level
// based on an index or dimension score. Higher scores mean weaker viability.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return "Critical"
	case score >= 60:
		return "High"
	case score >= 40:
		return "Moderate"
	default:
		return "Low"
	}
}

// ScoreReport is a pass prepared for display: ranked, limited and optionally explained.
type ScoreReport struct {
	Pass       PassResult                       `json:"-"`
	Source     string                           `json:"source"`
	Ranked     []RankedCountry                  `json:"ranked"`
	Breakdowns map[string]ContributionBreakdown `json:"breakdowns,omitempty"`
}

// CountryExplanation details how one country's index was built, from the
// composite contributions down to the metrics behind each dimension.
type CountryExplanation struct {
	Breakdown ContributionBreakdown              `json:"breakdown"`
	Metrics   map[Dimension][]MetricContribution `json:"metrics"`
	Features  map[Dimension]FeatureVector        `json:"features"`
	Fallback  []Dimension                        `json:"fallback,omitempty"`
}

// ValidationReport combines the score table checks with the dataset quality reports.
type ValidationReport struct {
	Scores   ScoreValidation `json:"scores"`
	Datasets []DatasetReport `json:"datasets"`
}

// SourceStatus lists the datasets a source currently exposes per dimension.
type SourceStatus struct {
	Source   string                 `json:"source"`
	Location string                 `json:"location,omitempty"`
	Datasets map[Dimension][]string `json:"datasets"`
}
