package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteValidationResults outputs the score checks and dataset quality reports.
func WriteValidationResults(w io.Writer, report schema.ValidationReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, report)
	case schema.CSVOut:
		header := []string{"dimension", "dataset", "kind", "rows", "columns", "accepted", "severity", "issue", "detail"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, r := range report.Datasets {
				base := []string{string(r.Dimension), r.Dataset, string(r.Kind), strconv.Itoa(r.Rows), strconv.Itoa(r.Columns), strconv.FormatBool(r.Accepted)}
				if len(r.Issues) == 0 {
					if err := cw.Write(append(base, "", "", "")); err != nil {
						return err
					}
					continue
				}
				for _, issue := range r.Issues {
					rec := append(base[:len(base):len(base)], string(issue.Severity), string(issue.Kind), issue.Detail)
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
			}
			return nil
		})
	default:
		status := "✅ Score table is valid"
		if !report.Scores.Valid {
			status = "❌ Score table has issues"
		}
		if _, err := fmt.Fprintln(w, status); err != nil {
			return err
		}
		for _, issue := range report.Scores.Issues {
			if _, err := fmt.Fprintf(w, "   - %s\n", issue); err != nil {
				return err
			}
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Dimension", "Mean", "Std", "Min", "Max", "Count", "Coverage"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for _, dim := range schema.AllDimensions {
			s, ok := report.Scores.Summary[dim]
			if !ok {
				continue
			}
			data = append(data, []string{
				string(dim), fmtFloat(s.Mean), fmtFloat(s.Std), fmtFloat(s.Min), fmtFloat(s.Max),
				strconv.Itoa(s.Count), fmtPercent(s.Coverage),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		return writeDatasetTable(w, report.Datasets, cfg)
	}
}

// WriteSourceStatus outputs the datasets a source exposes.
func WriteSourceStatus(w io.Writer, status schema.SourceStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, status)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"dimension", "dataset"}, func(cw *csv.Writer) error {
			for _, dim := range schema.AllDimensions {
				for _, name := range status.Datasets[dim] {
					if err := cw.Write([]string{string(dim), name}); err != nil {
						return err
					}
				}
			}
			return nil
		})
	default:
		location := status.Source
		if status.Location != "" {
			location = fmt.Sprintf("%s (%s)", status.Source, status.Location)
		}
		if _, err := fmt.Fprintf(w, "📦 Source: %s\n", location); err != nil {
			return err
		}
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Dimension", "Count", "Datasets"})
		var data [][]string
		total := 0
		for _, dim := range schema.AllDimensions {
			names := status.Datasets[dim]
			total += len(names)
			data = append(data, []string{string(dim), strconv.Itoa(len(names)), strings.Join(names, ", ")})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Total datasets: %d\n", total)
		return err
	}
}
