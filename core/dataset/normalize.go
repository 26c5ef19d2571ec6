// Package dataset prepares raw tables for scoring: it cleans column names,
// validates structural quality and classifies datasets by column signature.
package dataset

import (
	"fmt"
	"strings"

	"github.com/huangsam/viability/core/algo"
	"github.com/huangsam/viability/schema"
)

// CountryColumns lists the country-like column names in lookup order.
var CountryColumns = []string{"entity", "country", "country_name"}

// YearColumn is the column used for latest-row resolution.
const YearColumn = "year"

// Validation tolerances.
const (
	maxMissingFraction = 0.5
	maxMinorIssues     = 2
)

// CleanColumnName trims, lowercases and replaces whitespace runs with underscores.
func CleanColumnName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// NormalizeColumns returns a copy of the dataset with cleaned column names.
// When two columns clean to the same name, the first one wins.
func NormalizeColumns(ds schema.Dataset) schema.Dataset {
	keep := make([]int, 0, len(ds.Columns))
	cols := make([]string, 0, len(ds.Columns))
	seen := make(map[string]struct{}, len(ds.Columns))
	for i, c := range ds.Columns {
		clean := CleanColumnName(c)
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		keep = append(keep, i)
		cols = append(cols, clean)
	}

	rows := make([][]schema.Cell, len(ds.Rows))
	for r := range ds.Rows {
		row := make([]schema.Cell, len(keep))
		for j, i := range keep {
			row[j] = ds.At(r, i)
		}
		rows[r] = row
	}
	return schema.NewDataset(ds.Name, cols, rows)
}

// Validate inspects a dataset with already-cleaned columns and returns its issues.
func Validate(ds schema.Dataset) []schema.QualityIssue {
	if ds.Len() == 0 || len(ds.Columns) == 0 {
		return []schema.QualityIssue{{
			Kind:     schema.IssueEmptyTable,
			Severity: schema.SeverityMajor,
			Detail:   "dataset has no rows or no columns",
		}}
	}

	var issues []schema.QualityIssue
	n := float64(ds.Len())

	var highMissing []string
	for ci, col := range ds.Columns {
		missing := 0
		var nums []float64
		numeric := true
		for r := range ds.Rows {
			cell := ds.At(r, ci)
			if !cell.Valid {
				missing++
				continue
			}
			if v, ok := cell.Float(); ok {
				nums = append(nums, v)
			} else {
				numeric = false
			}
		}
		if float64(missing)/n > maxMissingFraction {
			highMissing = append(highMissing, col)
		}
		if numeric && len(nums) >= 2 && zeroVariance(nums) {
			issues = append(issues, schema.QualityIssue{
				Kind:     schema.IssueZeroVariance,
				Severity: schema.SeverityMinor,
				Columns:  []string{col},
				Detail:   fmt.Sprintf("column %s has zero variance", col),
			})
		}
	}
	if len(highMissing) > 0 {
		// Prepend so the report reads in the same order as the checks.
		issues = append([]schema.QualityIssue{{
			Kind:     schema.IssueHighMissing,
			Severity: schema.SeverityMinor,
			Columns:  highMissing,
			Detail:   fmt.Sprintf("columns with more than %.0f%% missing: %s", maxMissingFraction*100, strings.Join(highMissing, ", ")),
		}}, issues...)
	}

	if dups := countDuplicateRows(ds); dups > 0 {
		issues = append(issues, schema.QualityIssue{
			Kind:     schema.IssueDuplicateRows,
			Severity: schema.SeverityMinor,
			Detail:   fmt.Sprintf("%d duplicate rows", dups),
		})
	}
	return issues
}

// Accepted applies the tolerance rule: no major issue and at most two minor ones.
func Accepted(issues []schema.QualityIssue) bool {
	minor := 0
	for _, is := range issues {
		if is.Severity == schema.SeverityMajor {
			return false
		}
		minor++
	}
	return minor <= maxMinorIssues
}

// Prepare cleans columns, validates and classifies a dataset for one dimension.
func Prepare(dim schema.Dimension, ds schema.Dataset, rules []Rule) (schema.Dataset, schema.DatasetReport) {
	clean := NormalizeColumns(ds)
	issues := Validate(clean)
	report := schema.DatasetReport{
		Dimension: dim,
		Dataset:   ds.Name,
		Kind:      Classify(clean.ColumnSet(), rules),
		Rows:      clean.Len(),
		Columns:   len(clean.Columns),
		Issues:    issues,
		Accepted:  Accepted(issues),
	}
	return clean, report
}

// CountryColumn returns the first country-like column of a cleaned dataset, or -1.
func CountryColumn(ds schema.Dataset) int {
	for _, name := range CountryColumns {
		if i := ds.ColumnIndex(name); i >= 0 {
			return i
		}
	}
	return -1
}

func countDuplicateRows(ds schema.Dataset) int {
	seen := make(map[string]struct{}, ds.Len())
	dups := 0
	var b strings.Builder
	for r := range ds.Rows {
		b.Reset()
		for ci := range ds.Columns {
			cell := ds.At(r, ci)
			if cell.Valid {
				b.WriteString(cell.Text)
			} else {
				b.WriteString("\x00")
			}
			b.WriteByte('\x1f')
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// zeroVariance compares extremes so rounding in the mean cannot hide a constant column.
func zeroVariance(values []float64) bool {
	lo, hi := algo.MinMaxOf(values)
	return lo == hi
}
