package agg

import (
	"fmt"

	"github.com/huangsam/viability/core/algo"
	"github.com/huangsam/viability/schema"
)

// ValidateScores checks that every dimension column exists, is complete and
// stays within score bounds, and summarizes each column.
func ValidateScores(table schema.ScoreTable) schema.ScoreValidation {
	out := schema.ScoreValidation{Summary: make(map[schema.Dimension]schema.DimensionSummary)}

	byKey := make(map[string]string, len(table.Columns))
	for _, col := range table.Columns {
		byKey[NormalizeColumn(col)] = col
	}

	for _, dim := range schema.AllDimensions {
		col, ok := byKey[string(dim)]
		if !ok {
			out.Issues = append(out.Issues, fmt.Sprintf("missing dimension column: %s", dim))
			continue
		}

		var values []float64
		outside := 0
		for _, c := range table.Countries {
			v, ok := table.Get(c, col)
			if !ok {
				continue
			}
			values = append(values, v)
			if v < schema.MinScore || v > schema.MaxScore {
				outside++
			}
		}

		if missing := len(table.Countries) - len(values); missing > 0 {
			out.Issues = append(out.Issues, fmt.Sprintf("%s: %d missing values", dim, missing))
		}
		if outside > 0 {
			out.Issues = append(out.Issues, fmt.Sprintf("%s: %d values outside [0, 100]", dim, outside))
		}

		summary := schema.DimensionSummary{Count: len(values)}
		if len(table.Countries) > 0 {
			summary.Coverage = float64(len(values)) / float64(len(table.Countries))
		}
		if len(values) > 0 {
			summary.Mean = algo.Mean(values)
			summary.Std = algo.SampleStdDev(values)
			summary.Min, summary.Max = algo.MinMaxOf(values)
		}
		out.Summary[dim] = summary
	}

	out.Valid = len(out.Issues) == 0
	return out
}
