package dimension

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/viability/core/country"
	"github.com/huangsam/viability/core/dataset"
	"github.com/huangsam/viability/schema"
	"gopkg.in/yaml.v3"
)

// metricOverride holds the metric fields a dimensions file may change.
type metricOverride struct {
	Weight             *float64              `yaml:"weight"`
	Direction          *schema.Direction     `yaml:"direction"`
	Scaling            *schema.ScalingMethod `yaml:"scaling"`
	Min                *float64              `yaml:"min"`
	Max                *float64              `yaml:"max"`
	Transform          *schema.Transform     `yaml:"transform"`
	FractionAutoDetect *bool                 `yaml:"fraction_auto_detect"`
	Winsorize          *bool                 `yaml:"winsorize"`
	WinsorizeLower     *float64              `yaml:"winsorize_lower"`
	WinsorizeUpper     *float64              `yaml:"winsorize_upper"`
	Rescale            *schema.RescaleMode   `yaml:"rescale"`
	GroupByYear        *bool                 `yaml:"group_by_year"`
	Tier               *int                  `yaml:"tier"`
}

type dimensionOverride struct {
	Neutral         *float64                  `yaml:"neutral"`
	FallbackDefault *float64                  `yaml:"fallback_default"`
	Fallback        map[string]float64        `yaml:"fallback"`
	BetterTokens    []string                  `yaml:"better_tokens"`
	Rules           []dataset.Rule            `yaml:"rules"`
	Metrics         map[string]metricOverride `yaml:"metrics"`
}

type overrideFile struct {
	Dimensions map[schema.Dimension]dimensionOverride `yaml:"dimensions"`
}

// LoadOverrides reads a dimensions file and applies it on top of base.
// The base specs are not modified.
func LoadOverrides(path string, base map[schema.Dimension]Spec) (map[schema.Dimension]Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dimensions file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ApplyOverrides(f, base)
}

// ApplyOverrides decodes a strict YAML document and applies it on top of
// base. Unknown fields, dimensions and metrics are rejected, and every
// resulting spec is validated again.
func ApplyOverrides(r io.Reader, base map[schema.Dimension]Spec) (map[schema.Dimension]Spec, error) {
	var doc overrideFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse dimensions file: %w", err)
	}

	specs := CloneSpecs(base)
	for dim, ov := range doc.Dimensions {
		spec, ok := specs[dim]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
		}
		if err := ov.apply(&spec); err != nil {
			return nil, err
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs[dim] = spec
	}
	return specs, nil
}

func (ov dimensionOverride) apply(spec *Spec) error {
	if ov.Neutral != nil {
		spec.Neutral = *ov.Neutral
	}
	if ov.FallbackDefault != nil {
		spec.FallbackDefault = *ov.FallbackDefault
	}
	for name, v := range ov.Fallback {
		if spec.Fallback == nil {
			spec.Fallback = make(map[string]float64)
		}
		spec.Fallback[country.Canonical(name)] = v
	}
	if ov.BetterTokens != nil {
		spec.BetterTokens = ov.BetterTokens
	}
	if ov.Rules != nil {
		for _, r := range ov.Rules {
			if _, ok := schema.ValidDatasetKinds[r.Kind]; !ok {
				return fmt.Errorf("%w: %s rule has unknown kind %q", ErrInvalidSpec, spec.Name, r.Kind)
			}
		}
		spec.Rules = ov.Rules
	}

	for name, mo := range ov.Metrics {
		idx := -1
		for i, m := range spec.Metrics {
			if m.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s has no metric %q", ErrInvalidSpec, spec.Name, name)
		}
		mo.apply(&spec.Metrics[idx])
	}
	return nil
}

func (mo metricOverride) apply(m *MetricSpec) {
	setIf(&m.Weight, mo.Weight)
	setIf(&m.Direction, mo.Direction)
	setIf(&m.Scaling, mo.Scaling)
	setIf(&m.Min, mo.Min)
	setIf(&m.Max, mo.Max)
	setIf(&m.Transform, mo.Transform)
	setIf(&m.FractionAutoDetect, mo.FractionAutoDetect)
	setIf(&m.Winsorize, mo.Winsorize)
	setIf(&m.WinsorizeLower, mo.WinsorizeLower)
	setIf(&m.WinsorizeUpper, mo.WinsorizeUpper)
	setIf(&m.Rescale, mo.Rescale)
	setIf(&m.GroupByYear, mo.GroupByYear)
	setIf(&m.Tier, mo.Tier)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
