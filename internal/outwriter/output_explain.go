package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteExplainResults outputs how each country's index was built.
func WriteExplainResults(w io.Writer, explanations []schema.CountryExplanation, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, explanations)
	case schema.CSVOut:
		header := []string{"country", "persona", "index", "dimension", "score", "weight", "weighted", "percent", "imputed", "metric", "raw", "normalized", "metric_weight", "tier"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, ex := range explanations {
				b := ex.Breakdown
				for _, c := range b.Contributions {
					prefix := []string{
						b.Country, b.Persona, fmtFloat(b.Index),
						string(c.Dimension), fmtFloat(c.Raw), fmtFloat(c.Weight),
						fmtFloat(c.Weighted), fmtFloat(c.Percent), strconv.FormatBool(c.Imputed),
					}
					metrics := ex.Metrics[c.Dimension]
					if len(metrics) == 0 {
						if err := cw.Write(append(prefix, "", "", "", "", "")); err != nil {
							return err
						}
						continue
					}
					for _, m := range metrics {
						rec := append(prefix[:len(prefix):len(prefix)],
							m.Metric, fmtFloat(m.Raw), fmtFloat(m.Normalized), fmtFloat(m.Weight), strconv.Itoa(m.Tier))
						if err := cw.Write(rec); err != nil {
							return err
						}
					}
				}
			}
			return nil
		})
	default:
		for _, ex := range explanations {
			if err := writeExplainText(w, ex, cfg, fmtFloat); err != nil {
				return err
			}
		}
		return nil
	}
}

// writeExplainText prints one country's breakdown followed by its metrics.
func writeExplainText(w io.Writer, ex schema.CountryExplanation, cfg *contract.Config, fmtFloat func(float64) string) error {
	b := ex.Breakdown
	if _, err := fmt.Fprintf(w, "🔎 %s: %s (%s, %s persona)\n", b.Country, fmtFloat(b.Index), labelFor(b.Index, cfg), b.Persona); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "Score", "Weight", "Weighted", "Share", "Note"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	fallback := make(map[schema.Dimension]bool, len(ex.Fallback))
	for _, d := range ex.Fallback {
		fallback[d] = true
	}
	var data [][]string
	for _, c := range b.Contributions {
		note := ""
		switch {
		case c.Imputed:
			note = "median"
		case fallback[c.Dimension]:
			note = "fallback"
		}
		data = append(data, []string{
			string(c.Dimension),
			fmtFloat(c.Raw),
			fmt.Sprintf("%.2f", c.Weight),
			fmtFloat(c.Weighted),
			fmt.Sprintf("%.0f%%", c.Percent),
			note,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, c := range b.Contributions {
		metrics := ex.Metrics[c.Dimension]
		if len(metrics) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s:\n", c.Dimension); err != nil {
			return err
		}
		for _, m := range metrics {
			source := ""
			if obs, ok := ex.Features[c.Dimension][m.Metric]; ok {
				source = obs.Dataset
				if obs.HasYear {
					source = fmt.Sprintf("%s %d", source, obs.Year)
				}
			}
			if _, err := fmt.Fprintf(w, "    %-32s raw %-12s -> %6s x %.2f (tier %d, %s)\n",
				m.Metric, fmtFloat(m.Raw), fmtFloat(m.Normalized), m.Weight, m.Tier, source); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
