package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/viability/core/agg"
	"github.com/huangsam/viability/core/dimension"
	"github.com/huangsam/viability/internal/outwriter"
	"github.com/huangsam/viability/schema"
)

const (
	metricsTitle       = "Viability Index Definitions"
	metricsDescription = "Each dimension scores a country from 0 to 100, where higher means weaker viability.\n" +
		"Personas combine the dimension scores into a single index with the weights below."
)

// fractionAutoDetectNote marks metrics whose values at or below 1.0 are read as
// fractions. A genuine 0.5% is misread as 50%.
const fractionAutoDetectNote = "data-quality risk: values <= 1.0 are treated as fractions"

// BuildMetricsRenderModel describes the dimension specs and personas in effect.
func BuildMetricsRenderModel(registry *dimension.Registry, aggregator *agg.Aggregator) *schema.MetricsRenderModel {
	model := &schema.MetricsRenderModel{
		Title:       metricsTitle,
		Description: metricsDescription,
	}

	for _, spec := range registry.Specs() {
		def := schema.DimensionDefinition{
			Name:            spec.Name,
			Purpose:         spec.Purpose,
			Formula:         dimensionFormula(spec),
			Neutral:         spec.Neutral,
			FallbackDefault: spec.FallbackDefault,
		}
		for _, m := range spec.Metrics {
			def.Metrics = append(def.Metrics, metricDefinition(m))
		}
		model.Dimensions = append(model.Dimensions, def)
	}

	for _, name := range aggregator.Personas() {
		info, err := aggregator.PersonaInfo(name)
		if err != nil {
			continue
		}
		weights := make(map[string]float64, len(info.Weights))
		for dim, w := range info.Weights {
			weights[string(dim)] = w
		}
		model.Personas = append(model.Personas, schema.PersonaFormula{
			Name:    info.Name,
			Purpose: info.Description,
			Weights: weights,
			Formula: outwriter.FormatWeights(info.Weights),
		})
	}
	return model
}

func metricDefinition(m dimension.MetricSpec) schema.MetricDefinition {
	def := schema.MetricDefinition{
		Name:      m.Name,
		Weight:    m.Weight,
		Direction: m.Direction,
		Scaling:   m.Scaling,
		Tier:      m.Tier,
	}
	for _, src := range m.Sources {
		def.Sources = append(def.Sources, src.Column)
	}
	if m.Scaling == schema.FixedCapScaling {
		def.Bounds = fmt.Sprintf("[%g, %g]", m.Min, m.Max)
	}
	if m.FractionAutoDetect {
		def.Note = fractionAutoDetectNote
	}
	return def
}

// dimensionFormula renders the weighted sum of each tier. Later tiers apply
// only when no metric of an earlier tier is present.
func dimensionFormula(spec dimension.Spec) string {
	tiers := spec.Tiers()
	parts := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		var terms []string
		for _, m := range spec.Metrics {
			if m.Tier == tier {
				terms = append(terms, fmt.Sprintf("%.2f*%s", m.Weight, m.Name))
			}
		}
		parts = append(parts, strings.Join(terms, "+"))
	}
	if len(parts) <= 1 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts, " | else ")
}
