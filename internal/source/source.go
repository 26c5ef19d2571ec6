// Package source loads dimension datasets from a CSV directory or a SQL database.
package source

import (
	"fmt"
	"strings"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
)

// CatalogTable lists the dataset tables of a SQL source when present.
const CatalogTable = "viability_catalog"

// tableSeparator splits "<dimension>__<dataset>" table names.
const tableSeparator = "__"

// New opens the dataset source selected by the configuration.
func New(cfg *contract.Config) (contract.DatasetSource, error) {
	switch cfg.SourceBackend {
	case schema.CSVSource, "":
		return NewCSVSource(cfg.DataDir), nil
	case schema.SQLiteSource, schema.MySQLSource, schema.PostgreSQLSource:
		return NewSQLSource(cfg.SourceBackend, cfg.SourceDBConnect)
	default:
		return nil, fmt.Errorf("unsupported source: %s. Must be csv, sqlite, mysql, or postgresql", cfg.SourceBackend)
	}
}

// parseTableName splits a "<dimension>__<dataset>" table name. Tables that
// do not follow the convention are ignored.
func parseTableName(table string) (schema.Dimension, string, bool) {
	dimPart, dataset, ok := strings.Cut(table, tableSeparator)
	if !ok || dataset == "" {
		return "", "", false
	}
	dim := schema.Dimension(strings.ToLower(dimPart))
	if _, valid := schema.ValidDimensions[dim]; !valid {
		return "", "", false
	}
	return dim, dataset, true
}

// buildDataset turns a header and raw string records into a dataset.
func buildDataset(name string, header []string, records [][]string) schema.Dataset {
	rows := make([][]schema.Cell, len(records))
	for i, rec := range records {
		row := make([]schema.Cell, len(rec))
		for j, v := range rec {
			row[j] = schema.ParseCell(v)
		}
		rows[i] = row
	}
	return schema.NewDataset(name, header, rows)
}
