package algo

import (
	"math"
	"strings"

	"github.com/huangsam/viability/schema"
)

// Neutral is the scaled value reported when a population carries no
// information, such as a degenerate range or zero variance.
const Neutral = 0.5

// largeMagnitude is the absolute value above which squaring may overflow.
const largeMagnitude = 1e150

// Sample is one present value in a batch. Group is only consulted when
// min-max scaling is grouped, and holds the observation year.
type Sample struct {
	Value float64
	Group int
}

// Scaler maps raw metric values onto [0,1] before direction is applied.
type Scaler struct {
	Method             schema.ScalingMethod
	Min, Max           float64 // fixed-cap bounds
	Transform          schema.Transform
	FractionAutoDetect bool
	Winsorize          bool    // z-score only
	WinsorizeLower     float64 // quantile; 0 with Winsorize set means ClipLower
	WinsorizeUpper     float64 // quantile; 0 with Winsorize set means ClipUpper
	Rescale            schema.RescaleMode
	GroupByYear        bool // min-max only
}

// ScaleBatch scales every sample of one metric across the country batch.
// The result is aligned with samples and every value lies in [0,1]; values
// that cannot be scaled come back as Neutral.
func (s Scaler) ScaleBatch(samples []Sample) []float64 {
	values := make([]float64, len(samples))
	for i, smp := range samples {
		values[i] = s.prepare(smp.Value)
	}

	out := s.scale(values, samples)
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = Neutral
			continue
		}
		out[i] = Clamp(v, 0, 1)
	}
	return out
}

func (s Scaler) scale(values []float64, samples []Sample) []float64 {
	switch s.Method {
	case schema.MinMaxScaling:
		if s.GroupByYear {
			return minMaxGrouped(values, samples)
		}
		return MinMax(values)
	case schema.ZScoreScaling:
		return ZScore(s.winsorize(values), s.Rescale)
	case schema.PercentileScaling:
		return PercentileRank(values)
	default:
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = FixedCap(v, s.Min, s.Max)
		}
		return out
	}
}

// winsorize clips z-score inputs. Explicit quantiles win over the defaults.
func (s Scaler) winsorize(values []float64) []float64 {
	switch {
	case s.WinsorizeLower > 0 || s.WinsorizeUpper > 0:
		return Winsorize(values, s.WinsorizeLower, s.WinsorizeUpper)
	case s.Winsorize:
		return Clip(values)
	default:
		return values
	}
}

// prepare applies the fraction auto-detect and the configured transform.
func (s Scaler) prepare(v float64) float64 {
	if s.FractionAutoDetect {
		v = Percentify(v)
	}
	if s.Transform == schema.Log10Transform {
		if v <= 0 {
			return 0
		}
		return math.Log10(v)
	}
	return v
}

// Percentify treats values at or below 1.0 as fractions and converts them to
// percentages. A genuine 0.5% reads as 50%.
func Percentify(v float64) float64 {
	if v <= 1.0 {
		return v * 100
	}
	return v
}

// FixedCap linearly rescales v against literal bounds and clamps to [0,1].
func FixedCap(v, lo, hi float64) float64 {
	if hi == lo || math.IsNaN(v) {
		return Neutral
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	r := span(v, lo, hi)
	if math.IsNaN(r) {
		return Neutral
	}
	return Clamp(r, 0, 1)
}

// MinMax rescales values by the observed range. A degenerate range yields Neutral.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := MinMaxOf(values)
	for i, v := range values {
		if hi == lo {
			out[i] = Neutral
			continue
		}
		out[i] = span(v, lo, hi)
	}
	return out
}

// span returns where v sits between lo and hi. Halving first keeps the
// differences finite across the whole float64 range.
func span(v, lo, hi float64) float64 {
	return (v/2 - lo/2) / (hi/2 - lo/2)
}

// minMaxGrouped applies MinMax separately within each sample group.
func minMaxGrouped(values []float64, samples []Sample) []float64 {
	groups := make(map[int][]int)
	for i, smp := range samples {
		groups[smp.Group] = append(groups[smp.Group], i)
	}
	out := make([]float64, len(values))
	for _, idx := range groups {
		sub := make([]float64, len(idx))
		for j, i := range idx {
			sub[j] = values[i]
		}
		for j, v := range MinMax(sub) {
			out[idx[j]] = v
		}
	}
	return out
}

// ZScore standardizes values with the population standard deviation and maps
// them onto [0,1]. Zero variance yields Neutral.
func ZScore(values []float64, mode schema.RescaleMode) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	// z-scores do not depend on scale, so huge magnitudes are shrunk first
	// to keep the sums of squares finite.
	if m := MaxAbs(values); m > largeMagnitude && !math.IsInf(m, 0) {
		shrunk := make([]float64, len(values))
		for i, v := range values {
			shrunk[i] = v / m
		}
		values = shrunk
	}
	mean := Mean(values)
	sd := StdDev(values)
	if sd == 0 {
		for i := range out {
			out[i] = Neutral
		}
		return out
	}

	z := make([]float64, len(values))
	for i, v := range values {
		z[i] = (v - mean) / sd
	}

	if mode == schema.RescaleObserved {
		return MinMax(z)
	}
	for i, zi := range z {
		out[i] = Clamp(0.5+zi/6, 0, 1)
	}
	return out
}

// PercentileRank returns the average rank of each value divided by the count.
// A batch of identical values yields Neutral.
func PercentileRank(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	if lo, hi := MinMaxOf(values); lo == hi {
		for i := range out {
			out[i] = Neutral
		}
		return out
	}
	n := float64(len(values))
	for i, v := range values {
		below, equal := 0, 0
		for _, o := range values {
			switch {
			case o < v:
				below++
			case o == v:
				equal++
			}
		}
		// Average of ranks below+1 .. below+equal.
		avgRank := float64(below) + float64(equal+1)/2
		out[i] = avgRank / n
	}
	return out
}

// ApplyDirection inverts a scaled value when higher raw values are better.
func ApplyDirection(scaled float64, dir schema.Direction) float64 {
	if dir == schema.HigherIsBetter {
		return 1 - scaled
	}
	return scaled
}

// ResolveDirection returns an explicit direction. Auto directions become
// HigherIsBetter when the metric name contains any of the better tokens.
func ResolveDirection(metric string, dir schema.Direction, betterTokens []string) schema.Direction {
	if dir == schema.HigherIsWorse || dir == schema.HigherIsBetter {
		return dir
	}
	name := strings.ToLower(metric)
	for _, tok := range betterTokens {
		if tok != "" && strings.Contains(name, strings.ToLower(tok)) {
			return schema.HigherIsBetter
		}
	}
	return schema.HigherIsWorse
}
