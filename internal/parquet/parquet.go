// Package parquet exports scoring passes to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/viability/schema"
	"github.com/parquet-go/parquet-go"
)

// CountryScore is one country of a scoring pass with its dimension scores.
type CountryScore struct {
	// RunID identifies the scoring pass
	RunID string `parquet:"run_id,snappy"`

	// ScoredAt is when the pass finished (stored as TIMESTAMP with nanosecond precision)
	ScoredAt time.Time `parquet:"scored_at,snappy"`

	Persona string `parquet:"persona,snappy"`
	Country string `parquet:"country,snappy"`
	Rank    int32  `parquet:"rank,snappy"`

	// ViabilityIndex is the persona-weighted composite, 0-100
	ViabilityIndex float64 `parquet:"viability_index,snappy"`
	Label          string  `parquet:"label,snappy"`

	// Dimension scores are null when the dimension was not scored
	Infrastructure    *float64 `parquet:"infrastructure,optional,snappy"`
	Necessity         *float64 `parquet:"necessity,optional,snappy"`
	Resource          *float64 `parquet:"resource,optional,snappy"`
	ArtificialSupport *float64 `parquet:"artificial_support,optional,snappy"`
	Ecological        *float64 `parquet:"ecological,optional,snappy"`
	Economic          *float64 `parquet:"economic,optional,snappy"`
	Emissions         *float64 `parquet:"emissions,optional,snappy"`

	// Imputed lists the dimensions filled with the batch median, pipe separated (nullable)
	Imputed *string `parquet:"imputed,optional,snappy"`
}

// MetricContribution is one metric's share of a dimension score.
type MetricContribution struct {
	RunID      string  `parquet:"run_id,snappy"`
	Country    string  `parquet:"country,snappy"`
	Dimension  string  `parquet:"dimension,snappy"`
	Metric     string  `parquet:"metric,snappy"`
	Dataset    string  `parquet:"dataset,snappy"`
	Raw        float64 `parquet:"raw,snappy"`
	Normalized float64 `parquet:"normalized,snappy"`
	Weight     float64 `parquet:"weight,snappy"`
	Weighted   float64 `parquet:"weighted,snappy"`
	Tier       int32   `parquet:"tier,snappy"`

	// Year of the observation (nullable when the dataset has no year column)
	Year *int32 `parquet:"year,optional,snappy"`
}

// ConvertCountryScores flattens the ranked countries of a pass.
func ConvertCountryScores(result schema.PassResult, scoredAt time.Time) []CountryScore {
	out := make([]CountryScore, 0, len(result.Ranked))
	for _, rc := range result.Ranked {
		row := CountryScore{
			RunID:          result.RunID,
			ScoredAt:       scoredAt,
			Persona:        result.Persona,
			Country:        rc.Country,
			Rank:           int32(rc.Rank),
			ViabilityIndex: rc.Index,
			Label:          rc.Label,
		}
		for dim, field := range row.dimensionFields() {
			if v, ok := result.Table.Get(rc.Country, string(dim)); ok {
				*field = &v
			}
		}
		if imputed := result.Composite.Imputed[rc.Country]; len(imputed) > 0 {
			names := make([]string, len(imputed))
			for i, d := range imputed {
				names[i] = string(d)
			}
			joined := strings.Join(names, "|")
			row.Imputed = &joined
		}
		out = append(out, row)
	}
	return out
}

func (r *CountryScore) dimensionFields() map[schema.Dimension]**float64 {
	return map[schema.Dimension]**float64{
		schema.InfrastructureDim:    &r.Infrastructure,
		schema.NecessityDim:         &r.Necessity,
		schema.ResourceDim:          &r.Resource,
		schema.ArtificialSupportDim: &r.ArtificialSupport,
		schema.EcologicalDim:        &r.Ecological,
		schema.EconomicDim:          &r.Economic,
		schema.EmissionsDim:         &r.Emissions,
	}
}

// ConvertMetricContributions flattens the metric contributions of a pass,
// ordered by dimension, country and metric.
func ConvertMetricContributions(result schema.PassResult) []MetricContribution {
	var out []MetricContribution
	for _, dim := range schema.AllDimensions {
		res, ok := result.Dimensions[dim]
		if !ok {
			continue
		}
		countries := make([]string, 0, len(res.Contributions))
		for c := range res.Contributions {
			countries = append(countries, c)
		}
		sort.Strings(countries)

		for _, c := range countries {
			for _, mc := range res.Contributions[c] {
				row := MetricContribution{
					RunID:      result.RunID,
					Country:    c,
					Dimension:  string(dim),
					Metric:     mc.Metric,
					Raw:        mc.Raw,
					Normalized: mc.Normalized,
					Weight:     mc.Weight,
					Weighted:   mc.Weighted,
					Tier:       int32(mc.Tier),
				}
				if obs, ok := res.Features[c][mc.Metric]; ok {
					row.Dataset = obs.Dataset
					if obs.HasYear {
						year := int32(obs.Year)
						row.Year = &year
					}
				}
				out = append(out, row)
			}
		}
	}
	return out
}

// WriteCountryScoresParquet writes country scores to a Parquet file.
func WriteCountryScoresParquet(data []CountryScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteMetricContributionsParquet writes metric contributions to a Parquet file.
func WriteMetricContributionsParquet(data []MetricContribution, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using struct schema inference from the parquet tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ContributionsPath derives the contributions file name from a scores file name.
func ContributionsPath(scoresPath string) string {
	if base, ok := strings.CutSuffix(scoresPath, ".parquet"); ok {
		return base + "_contributions.parquet"
	}
	return scoresPath + "_contributions.parquet"
}
