package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// dimensionHeaders are the short table headers of each dimension.
var dimensionHeaders = map[schema.Dimension]string{
	schema.InfrastructureDim:    "Infra",
	schema.NecessityDim:         "Need",
	schema.ResourceDim:          "Resource",
	schema.ArtificialSupportDim: "Support",
	schema.EcologicalDim:        "Ecology",
	schema.EconomicDim:          "Economy",
	schema.EmissionsDim:         "Emission",
}

// topDrivers is how many contributions the explain column shows.
const topDrivers = 2

// WriteScoreResults outputs a scoring pass, dispatching on the configured format.
// Parquet is handled by the OutWriter since it needs a file path.
func WriteScoreResults(w io.Writer, report schema.ScoreReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtOptional := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSONResultsForScores(w, report); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForScores(w, report, fmtFloat, fmtOptional); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeScoreTable(w, report, cfg, fmtFloat, fmtOptional, duration)
	}
	return nil
}

// writeScoreTable generates and writes the human-readable ranking table.
func writeScoreTable(writer io.Writer, report schema.ScoreReport, cfg *contract.Config, fmtFloat func(float64) string, fmtOptional func(float64, bool, string) string, duration time.Duration) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Country", "Index", "Label"}
	for _, dim := range schema.AllDimensions {
		headers = append(headers, dimensionHeaders[dim])
	}
	if cfg.Explain {
		headers = append(headers, "Drivers")
	}
	table.Header(headers)

	// 2. Configure alignment to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, rc := range report.Ranked {
		row := []string{
			strconv.Itoa(rc.Rank),
			contract.TruncateName(rc.Country, nameWidth),
			fmtFloat(rc.Index),
			labelFor(rc.Index, cfg),
		}
		for _, dim := range schema.AllDimensions {
			v, ok := report.Pass.Table.Get(rc.Country, string(dim))
			row = append(row, fmtOptional(v, ok, "-"))
		}
		if cfg.Explain {
			row = append(row, formatTopDrivers(report.Breakdowns[rc.Country]))
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d of %d countries under the %s persona (run %s)\n",
		len(report.Ranked), len(report.Pass.Countries), report.Pass.Persona, report.Pass.RunID); err != nil {
		return err
	}
	if err := writeWarnings(writer, report.Pass); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Scoring completed in %v with %d workers. Source: %s\n", duration, cfg.Workers, report.Source); err != nil {
		return err
	}
	return nil
}

// writeWarnings lists pass warnings and dropped datasets under a table.
func writeWarnings(w io.Writer, pass schema.PassResult) error {
	for _, warning := range pass.Warnings {
		if _, err := fmt.Fprintf(w, "⚠️  %s\n", warning); err != nil {
			return err
		}
	}
	for _, r := range pass.DroppedDatasets() {
		if _, err := fmt.Fprintf(w, "⚠️  dropped %s/%s: %s\n", r.Dimension, r.Dataset, describeIssues(r.Issues)); err != nil {
			return err
		}
	}
	return nil
}

// formatTopDrivers summarizes the largest contributions of a breakdown.
func formatTopDrivers(b schema.ContributionBreakdown) string {
	var parts []string
	for i, c := range b.Contributions {
		if i >= topDrivers {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %.0f%%", c.Dimension, c.Percent))
	}
	return strings.Join(parts, ", ")
}

// describeIssues joins the details of quality issues.
func describeIssues(issues []schema.QualityIssue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, issue.Detail)
	}
	return strings.Join(parts, "; ")
}

// writeCSVResultsForScores writes the ranking in CSV format.
func writeCSVResultsForScores(w io.Writer, report schema.ScoreReport, fmtFloat func(float64) string, fmtOptional func(float64, bool, string) string) error {
	header := []string{"rank", "country", "viability_index", "label"}
	for _, dim := range schema.AllDimensions {
		header = append(header, string(dim))
	}
	header = append(header, "imputed", "persona", "run_id")

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, rc := range report.Ranked {
			rec := []string{
				strconv.Itoa(rc.Rank),
				rc.Country,
				fmtFloat(rc.Index),
				contract.GetPlainLabel(rc.Index),
			}
			for _, dim := range schema.AllDimensions {
				v, ok := report.Pass.Table.Get(rc.Country, string(dim))
				rec = append(rec, fmtOptional(v, ok, ""))
			}
			rec = append(rec,
				joinDimensions(report.Pass.Composite.Imputed[rc.Country]),
				report.Pass.Persona,
				report.Pass.RunID,
			)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// jsonCountryScore is one ranked country in JSON output.
type jsonCountryScore struct {
	schema.RankedCountry
	Dimensions map[schema.Dimension]float64  `json:"dimensions"`
	Imputed    []schema.Dimension            `json:"imputed,omitempty"`
	Breakdown  *schema.ContributionBreakdown `json:"breakdown,omitempty"`
}

// jsonScoreOutput is the JSON document of a scoring pass.
type jsonScoreOutput struct {
	RunID           string                       `json:"run_id"`
	Persona         string                       `json:"persona"`
	PersonaFallback bool                         `json:"persona_fallback"`
	Source          string                       `json:"source"`
	Weights         map[schema.Dimension]float64 `json:"weights"`
	Countries       []jsonCountryScore           `json:"countries"`
	Completeness    map[schema.Dimension]float64 `json:"completeness"`
	Warnings        []string                     `json:"warnings,omitempty"`
	Dropped         []schema.DatasetReport       `json:"dropped_datasets,omitempty"`
}

// writeJSONResultsForScores writes the ranking in JSON format.
func writeJSONResultsForScores(w io.Writer, report schema.ScoreReport) error {
	pass := report.Pass
	out := jsonScoreOutput{
		RunID:           pass.RunID,
		Persona:         pass.Persona,
		PersonaFallback: pass.PersonaFallback,
		Source:          report.Source,
		Weights:         pass.Composite.Weights,
		Countries:       make([]jsonCountryScore, 0, len(report.Ranked)),
		Completeness:    pass.Completeness,
		Warnings:        pass.Warnings,
		Dropped:         pass.DroppedDatasets(),
	}
	for _, rc := range report.Ranked {
		entry := jsonCountryScore{
			RankedCountry: rc,
			Dimensions:    make(map[schema.Dimension]float64),
			Imputed:       pass.Composite.Imputed[rc.Country],
		}
		for _, dim := range schema.AllDimensions {
			if v, ok := pass.Table.Get(rc.Country, string(dim)); ok {
				entry.Dimensions[dim] = v
			}
		}
		if b, ok := report.Breakdowns[rc.Country]; ok {
			entry.Breakdown = &b
		}
		out.Countries = append(out.Countries, entry)
	}
	return writeJSON(w, out)
}

// joinDimensions joins dimension names with a pipe.
func joinDimensions(dims []schema.Dimension) string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = string(d)
	}
	return strings.Join(names, "|")
}
