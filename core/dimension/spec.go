// Package dimension scores one dimension of the viability index for a batch
// of countries. Every dimension runs through the same Engine; what differs
// between them is the declarative Spec.
package dimension

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"

	"github.com/huangsam/viability/core/algo"
	"github.com/huangsam/viability/core/dataset"
	"github.com/huangsam/viability/schema"
)

// weightTolerance bounds how far a tier's weights may drift from 1.0.
const weightTolerance = 1e-3

var (
	// ErrInvalidSpec is returned when a dimension spec fails validation.
	ErrInvalidSpec = errors.New("invalid dimension spec")

	// ErrUnknownDimension is returned for dimension names outside the registry.
	ErrUnknownDimension = errors.New("unknown dimension")
)

// Source is one column a metric can be read from, with the dataset kinds to
// try before the fallback scan.
type Source struct {
	Column    string
	Preferred []schema.DatasetKind
}

// MetricSpec declares how a single metric contributes to a dimension.
type MetricSpec struct {
	Name      string
	Sources   []Source // tried in order; the first present value wins
	Weight    float64
	Direction schema.Direction
	Scaling   schema.ScalingMethod
	Min       float64
	Max       float64
	Transform schema.Transform
	// FractionAutoDetect multiplies values at or below 1.0 by 100.
	FractionAutoDetect bool
	Winsorize          bool
	WinsorizeLower     float64
	WinsorizeUpper     float64
	Rescale            schema.RescaleMode
	GroupByYear        bool
	Tier               int
}

// Scaler returns the normalizer configured for this metric.
func (m MetricSpec) Scaler() algo.Scaler {
	return algo.Scaler{
		Method:             m.Scaling,
		Min:                m.Min,
		Max:                m.Max,
		Transform:          m.Transform,
		FractionAutoDetect: m.FractionAutoDetect,
		Winsorize:          m.Winsorize,
		WinsorizeLower:     m.WinsorizeLower,
		WinsorizeUpper:     m.WinsorizeUpper,
		Rescale:            m.Rescale,
		GroupByYear:        m.GroupByYear,
	}
}

// Spec declares a dimension: its metrics, classification rules and fallbacks.
type Spec struct {
	Name            schema.Dimension
	Purpose         string
	Metrics         []MetricSpec
	Rules           []dataset.Rule
	BetterTokens    []string
	Neutral         float64
	Fallback        map[string]float64 // canonical country -> score when no dataset survives
	FallbackDefault float64
}

// Validate checks weights, scaling parameters and score bounds.
func (s Spec) Validate() error {
	if _, ok := schema.ValidDimensions[s.Name]; !ok {
		return fmt.Errorf("%w: %w %q", ErrInvalidSpec, ErrUnknownDimension, s.Name)
	}
	if len(s.Metrics) == 0 {
		return fmt.Errorf("%w: %s has no metrics", ErrInvalidSpec, s.Name)
	}

	sums := make(map[int]float64)
	names := make(map[string]struct{}, len(s.Metrics))
	for _, m := range s.Metrics {
		if _, dup := names[m.Name]; dup {
			return fmt.Errorf("%w: %s has duplicate metric %s", ErrInvalidSpec, s.Name, m.Name)
		}
		names[m.Name] = struct{}{}
		if len(m.Sources) == 0 {
			return fmt.Errorf("%w: %s.%s has no sources", ErrInvalidSpec, s.Name, m.Name)
		}
		if m.Weight < 0 || math.IsNaN(m.Weight) {
			return fmt.Errorf("%w: %s.%s has negative weight %v", ErrInvalidSpec, s.Name, m.Name, m.Weight)
		}
		if m.Tier < 0 {
			return fmt.Errorf("%w: %s.%s has negative tier", ErrInvalidSpec, s.Name, m.Name)
		}
		if _, ok := schema.ValidDirections[m.Direction]; !ok {
			return fmt.Errorf("%w: %s.%s has invalid direction %q", ErrInvalidSpec, s.Name, m.Name, m.Direction)
		}
		if _, ok := schema.ValidScalingMethods[m.Scaling]; !ok {
			return fmt.Errorf("%w: %s.%s has invalid scaling %q", ErrInvalidSpec, s.Name, m.Name, m.Scaling)
		}
		if m.Transform != schema.NoTransform && m.Transform != schema.Log10Transform {
			return fmt.Errorf("%w: %s.%s has invalid transform %q", ErrInvalidSpec, s.Name, m.Name, m.Transform)
		}
		if m.Rescale != "" && m.Rescale != schema.RescaleSigma3 && m.Rescale != schema.RescaleObserved {
			return fmt.Errorf("%w: %s.%s has invalid rescale %q", ErrInvalidSpec, s.Name, m.Name, m.Rescale)
		}
		if !finite(m.Min) || !finite(m.Max) {
			return fmt.Errorf("%w: %s.%s has non-finite cap bounds", ErrInvalidSpec, s.Name, m.Name)
		}
		if m.Scaling == schema.FixedCapScaling && m.Min == m.Max {
			return fmt.Errorf("%w: %s.%s has empty cap range", ErrInvalidSpec, s.Name, m.Name)
		}
		sums[m.Tier] += m.Weight
	}

	for _, tier := range slices.Sorted(maps.Keys(sums)) {
		if math.Abs(sums[tier]-1.0) > weightTolerance {
			return fmt.Errorf("%w: %s tier %d weights sum to %.4f, want 1.0", ErrInvalidSpec, s.Name, tier, sums[tier])
		}
	}

	for name, v := range s.Fallback {
		if !inScoreRange(v) {
			return fmt.Errorf("%w: %s fallback for %s out of range: %v", ErrInvalidSpec, s.Name, name, v)
		}
	}
	for _, v := range []float64{s.Neutral, s.FallbackDefault} {
		if !inScoreRange(v) {
			return fmt.Errorf("%w: %s neutral or default out of range: %v", ErrInvalidSpec, s.Name, v)
		}
	}
	return nil
}

// inScoreRange reports whether v is a number within [MinScore, MaxScore].
func inScoreRange(v float64) bool {
	return v >= schema.MinScore && v <= schema.MaxScore
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Tiers returns the distinct metric tiers in ascending order.
func (s Spec) Tiers() []int {
	seen := make(map[int]struct{})
	for _, m := range s.Metrics {
		seen[m.Tier] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// FallbackCountries returns the countries of the fallback table, sorted.
func (s Spec) FallbackCountries() []string {
	out := slices.Collect(maps.Keys(s.Fallback))
	sort.Strings(out)
	return out
}

// FallbackScore returns the fallback score for a canonical country.
func (s Spec) FallbackScore(name string) float64 {
	if v, ok := s.Fallback[name]; ok {
		return v
	}
	return s.FallbackDefault
}

// Clone deep-copies the spec so overrides never touch the defaults.
func (s Spec) Clone() Spec {
	out := s
	out.Metrics = make([]MetricSpec, len(s.Metrics))
	for i, m := range s.Metrics {
		m.Sources = slices.Clone(m.Sources)
		for j := range m.Sources {
			m.Sources[j].Preferred = slices.Clone(m.Sources[j].Preferred)
		}
		out.Metrics[i] = m
	}
	out.Rules = slices.Clone(s.Rules)
	out.BetterTokens = slices.Clone(s.BetterTokens)
	out.Fallback = maps.Clone(s.Fallback)
	return out
}

// Metric returns the metric with the given name.
func (s Spec) Metric(name string) (MetricSpec, bool) {
	for _, m := range s.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return MetricSpec{}, false
}
