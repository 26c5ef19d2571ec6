// Package schema has configs, models and constants for all parts of viability.
package schema

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Cell is a single table value. A zero Cell is missing.
type Cell struct {
	Text  string  // Original text, trimmed
	Num   float64 // Parsed numeric value when IsNum is set
	IsNum bool    // Whether the cell holds a number
	Valid bool    // Whether the cell holds any value at all
}

// missingTokens are textual spellings of an absent value.
var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
	"..":   {},
	"-":    {},
}

// ParseCell interprets raw text from a tabular source.
func ParseCell(raw string) Cell {
	text := strings.TrimSpace(raw)
	if _, ok := missingTokens[strings.ToLower(text)]; ok {
		return Cell{}
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return Cell{Text: text, Num: v, IsNum: true, Valid: true}
	}
	return Cell{Text: text, Valid: true}
}

// NumCell builds a numeric cell. NaN and infinities are treated as missing.
func NumCell(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Cell{}
	}
	return Cell{Text: strconv.FormatFloat(v, 'f', -1, 64), Num: v, IsNum: true, Valid: true}
}

// TextCell builds a text cell, parsing it as a number when possible.
func TextCell(s string) Cell {
	return ParseCell(s)
}

// Float returns the numeric value of the cell, if any.
func (c Cell) Float() (float64, bool) {
	if !c.Valid || !c.IsNum {
		return 0, false
	}
	return c.Num, true
}

// String returns the cell text, or an empty string when missing.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return c.Text
}

// Dataset is a named table with arbitrary columns. Rows may be ragged;
// absent trailing cells read as missing.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]Cell
}

// NewDataset creates a dataset from columns and rows.
func NewDataset(name string, columns []string, rows [][]Cell) Dataset {
	return Dataset{Name: name, Columns: columns, Rows: rows}
}

// ColumnIndex returns the index of the named column, or -1.
func (d Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the dataset has the named column.
func (d Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	return len(d.Rows)
}

// At returns the cell at (row, col), or a missing cell when out of range.
func (d Dataset) At(row, col int) Cell {
	if row < 0 || row >= len(d.Rows) || col < 0 || col >= len(d.Rows[row]) {
		return Cell{}
	}
	return d.Rows[row][col]
}

// ColumnSet returns the set of column names.
func (d Dataset) ColumnSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		set[c] = struct{}{}
	}
	return set
}

// Snapshot maps each dimension to its datasets keyed by dataset name.
// A snapshot is read-only for the duration of a scoring pass.
type Snapshot map[Dimension]map[string]Dataset

// DatasetCount returns the total number of datasets across dimensions.
func (s Snapshot) DatasetCount() int {
	total := 0
	for _, sets := range s {
		total += len(sets)
	}
	return total
}

// SortedNames returns the dataset names of a dimension in lexical order.
func (s Snapshot) SortedNames(dim Dimension) []string {
	names := make([]string, 0, len(s[dim]))
	for name := range s[dim] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
