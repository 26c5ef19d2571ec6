package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteMetricsDefinitions outputs how each dimension and persona is computed.
func WriteMetricsDefinitions(w io.Writer, model *schema.MetricsRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, model)
	case schema.CSVOut:
		header := []string{"dimension", "metric", "sources", "weight", "direction", "scaling", "bounds", "tier", "note"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, dim := range model.Dimensions {
				for _, m := range dim.Metrics {
					rec := []string{
						string(dim.Name),
						m.Name,
						strings.Join(m.Sources, "|"),
						fmt.Sprintf("%.2f", m.Weight),
						string(m.Direction),
						string(m.Scaling),
						m.Bounds,
						fmt.Sprintf("%d", m.Tier),
						m.Note,
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
			}
			return nil
		})
	default:
		return writeMetricsText(w, model)
	}
}

// writeMetricsText displays the definitions in human-readable text format.
func writeMetricsText(w io.Writer, model *schema.MetricsRenderModel) error {
	if _, err := fmt.Fprintf(w, "🌍 %s\n%s\n\n%s\n\n", model.Title, strings.Repeat("=", len(model.Title)+3), model.Description); err != nil {
		return err
	}

	for _, dim := range model.Dimensions {
		if _, err := fmt.Fprintf(w, "%s: %s\n", strings.ToUpper(string(dim.Name)), dim.Purpose); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   Formula: Score = %s\n", dim.Formula); err != nil {
			return err
		}
		for _, m := range dim.Metrics {
			bounds := ""
			if m.Bounds != "" {
				bounds = " " + m.Bounds
			}
			if _, err := fmt.Fprintf(w, "   - %s (tier %d, %s, %s%s) from %s\n",
				m.Name, m.Tier, m.Direction, m.Scaling, bounds, strings.Join(m.Sources, ", ")); err != nil {
				return err
			}
			if m.Note != "" {
				if _, err := fmt.Fprintf(w, "     ⚠️  %s\n", m.Note); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintf(w, "   Neutral: %.0f, fallback default: %.0f\n\n", dim.Neutral, dim.FallbackDefault); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "👥 Personas"); err != nil {
		return err
	}
	for _, p := range model.Personas {
		if _, err := fmt.Fprintf(w, "%s: %s\n   Formula: Index = %s\n", strings.ToUpper(p.Name), p.Purpose, p.Formula); err != nil {
			return err
		}
	}
	return nil
}

// WritePersonaResults outputs the available personas and their weights.
func WritePersonaResults(w io.Writer, personas []schema.PersonaInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, personas)
	case schema.CSVOut:
		header := []string{"persona", "custom", "description"}
		for _, dim := range schema.AllDimensions {
			header = append(header, string(dim))
		}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, p := range personas {
				rec := []string{p.Name, fmt.Sprintf("%t", p.Custom), p.Description}
				for _, dim := range schema.AllDimensions {
					rec = append(rec, fmt.Sprintf("%.3f", p.Weights[dim]))
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Persona", "Top Dimensions", "Weights", "Description"})
		var data [][]string
		for _, p := range personas {
			name := p.Name
			if p.Custom {
				name += " *"
			}
			top := make([]string, len(p.TopDimensions))
			for i, d := range p.TopDimensions {
				top[i] = string(d)
			}
			data = append(data, []string{name, strings.Join(top, ", "), FormatWeights(p.Weights), p.Description})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, "* customized in the config file")
		return err
	}
}

// FormatWeights formats positive weights in dimension order, e.g. "0.25*economic+0.20*emissions".
func FormatWeights(weights map[schema.Dimension]float64) string {
	var parts []string
	for _, dim := range schema.AllDimensions {
		if weight, ok := weights[dim]; ok && weight > 0 {
			parts = append(parts, fmt.Sprintf("%.2f*%s", weight, dim))
		}
	}
	return strings.Join(parts, "+")
}
