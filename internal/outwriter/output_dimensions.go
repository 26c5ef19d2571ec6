package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteDimensionResults outputs the score table of every dimension.
func WriteDimensionResults(w io.Writer, pass schema.PassResult, cfg *contract.Config) error {
	_, fmtOptional := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, struct {
			RunID        string                       `json:"run_id"`
			Table        schema.ScoreTable            `json:"table"`
			Completeness map[schema.Dimension]float64 `json:"completeness"`
		}{pass.RunID, pass.Table, pass.Completeness})
	case schema.CSVOut:
		header := []string{"country"}
		for _, dim := range schema.AllDimensions {
			header = append(header, string(dim))
		}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, c := range pass.Countries {
				rec := []string{c}
				for _, dim := range schema.AllDimensions {
					v, ok := pass.Table.Get(c, string(dim))
					rec = append(rec, fmtOptional(v, ok, ""))
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		table := tablewriter.NewWriter(w)
		headers := []string{"Country"}
		for _, dim := range schema.AllDimensions {
			headers = append(headers, dimensionHeaders[dim])
		}
		table.Header(headers)
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		nameWidth := GetMaxTableNameWidth(cfg)
		var data [][]string
		for _, c := range pass.Countries {
			row := []string{contract.TruncateName(c, nameWidth)}
			for _, dim := range schema.AllDimensions {
				v, ok := pass.Table.Get(c, string(dim))
				row = append(row, fmtOptional(v, ok, "-"))
			}
			data = append(data, row)
		}
		coverage := []string{"Coverage"}
		for _, dim := range schema.AllDimensions {
			coverage = append(coverage, fmtPercent(pass.Completeness[dim]))
		}
		data = append(data, coverage)

		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		return writeWarnings(w, pass)
	}
}

// WriteDimensionDetail outputs the scores and datasets of a single dimension.
func WriteDimensionDetail(w io.Writer, result schema.DimensionResult, countries []string, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, result)
	case schema.CSVOut:
		header := []string{"country", "score", "label", "metrics", "top_metric"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, c := range countries {
				score, ok := result.Scores[c]
				if !ok {
					continue
				}
				rec := []string{
					c,
					fmtFloat(score),
					contract.GetPlainLabel(score),
					strconv.Itoa(len(result.Features[c])),
					topMetric(result.Contributions[c]),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		title := fmt.Sprintf("📊 %s", result.Dimension)
		if result.UsedFallback {
			title += " (fallback scores)"
		}
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Country", "Score", "Label", "Metrics", "Top Metric"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		nameWidth := GetMaxTableNameWidth(cfg)
		var data [][]string
		for _, c := range countries {
			score, ok := result.Scores[c]
			if !ok {
				continue
			}
			data = append(data, []string{
				contract.TruncateName(c, nameWidth),
				fmtFloat(score),
				labelFor(score, cfg),
				strconv.Itoa(len(result.Features[c])),
				topMetric(result.Contributions[c]),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		return writeDatasetTable(w, result.Datasets, cfg)
	}
}

// topMetric names the metric with the largest weighted contribution.
func topMetric(contribs []schema.MetricContribution) string {
	if len(contribs) == 0 {
		return ""
	}
	sorted := make([]schema.MetricContribution, len(contribs))
	copy(sorted, contribs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weighted > sorted[j].Weighted
	})
	return sorted[0].Metric
}

// writeDatasetTable lists dataset validation outcomes.
func writeDatasetTable(w io.Writer, reports []schema.DatasetReport, cfg *contract.Config) error {
	if len(reports) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "Dataset", "Kind", "Rows", "Status", "Issues"})
	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, r := range reports {
		status := "accepted"
		if !r.Accepted {
			status = "dropped"
		}
		data = append(data, []string{
			string(r.Dimension),
			contract.TruncateName(r.Dataset, nameWidth),
			string(r.Kind),
			strconv.Itoa(r.Rows),
			status,
			describeIssues(r.Issues),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
