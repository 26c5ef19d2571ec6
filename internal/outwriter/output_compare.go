package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// spreadWarning is the spread above which personas disagree sharply.
const spreadWarning = 15.0

// WriteComparisonResults outputs the index of each country under several personas.
func WriteComparisonResults(w io.Writer, cmp schema.PersonaComparison, cfg *contract.Config) error {
	fmtFloat, fmtOptional := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		spread := make(map[string]float64, len(cmp.Countries))
		for _, c := range cmp.Countries {
			spread[c] = cmp.Spread(c)
		}
		return writeJSON(w, struct {
			schema.PersonaComparison
			Spread map[string]float64 `json:"spread"`
		}{cmp, spread})
	case schema.CSVOut:
		header := append([]string{"country"}, cmp.Personas...)
		header = append(header, "spread")
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, c := range cmp.Countries {
				rec := []string{c}
				for _, p := range cmp.Personas {
					v, ok := cmp.Index[p][c]
					rec = append(rec, fmtOptional(v, ok, ""))
				}
				rec = append(rec, fmtFloat(cmp.Spread(c)))
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return writeComparisonTable(w, cmp, cfg, fmtFloat, fmtOptional)
	}
}

// writeComparisonTable writes personas side by side with the spread.
func writeComparisonTable(w io.Writer, cmp schema.PersonaComparison, cfg *contract.Config, fmtFloat func(float64) string, fmtOptional func(float64, bool, string) string) error {
	table := tablewriter.NewWriter(w)
	headers := append([]string{"Country"}, cmp.Personas...)
	headers = append(headers, "Spread")
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	highlight := fmt.Sprint
	if cfg.UseColors {
		highlight = color.New(color.FgYellow, color.Bold).SprintFunc()
	}

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, c := range cmp.Countries {
		row := []string{contract.TruncateName(c, nameWidth)}
		for _, p := range cmp.Personas {
			v, ok := cmp.Index[p][c]
			row = append(row, fmtOptional(v, ok, "-"))
		}
		spread := cmp.Spread(c)
		if spread >= spreadWarning {
			row = append(row, highlight(fmtFloat(spread)))
		} else {
			row = append(row, fmtFloat(spread))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Compared %d personas across %d countries\n", len(cmp.Personas), len(cmp.Countries))
	return err
}
