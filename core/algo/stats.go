// Package algo has the numeric building blocks for scoring: statistics,
// directional scaling and ranking.
package algo

import (
	"math"
	"slices"
)

// Clamp bounds v to [lo, hi]. NaN maps to the midpoint of the range.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo/2 + hi/2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, or 0 for fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	acc := 0.0
	for _, v := range values {
		d := v - m
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(values)))
}

// SampleStdDev returns the sample standard deviation (n-1), or 0 for fewer than two values.
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	acc := 0.0
	for _, v := range values {
		d := v - m
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(values)-1))
}

// Median returns the median and whether it is defined.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return Quantile(values, 0.5), true
}

// Quantile returns the q-th quantile using linear interpolation between
// closest ranks. q is clamped to [0,1]; an empty slice yields 0.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	q = Clamp(q, 0, 1)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Winsorize clips values to the [lower, upper] quantiles of the batch.
// Bounds outside (0,1) leave that side untouched.
func Winsorize(values []float64, lower, upper float64) []float64 {
	out := slices.Clone(values)
	if len(values) == 0 {
		return out
	}
	lo := math.Inf(-1)
	hi := math.Inf(1)
	if lower > 0 && lower < 1 {
		lo = Quantile(values, lower)
	}
	if upper > 0 && upper < 1 {
		hi = Quantile(values, upper)
	}
	for i, v := range out {
		out[i] = Clamp(v, lo, hi)
	}
	return out
}

// Default percentile clipping bounds.
const (
	ClipLower = 0.05
	ClipUpper = 0.95
)

// Clip winsorizes values at the default 5th and 95th percentiles.
func Clip(values []float64) []float64 {
	return Winsorize(values, ClipLower, ClipUpper)
}

// MaxAbs returns the largest absolute value, or 0 for an empty slice.
func MaxAbs(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		m = max(m, math.Abs(v))
	}
	return m
}

// MinMaxOf returns the minimum and maximum of a non-empty slice.
func MinMaxOf(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
