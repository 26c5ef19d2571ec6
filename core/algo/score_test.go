package algo

import (
	"math"
	"testing"

	"github.com/huangsam/viability/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		q        float64
		expected float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single value", []float64{7}, 0.9, 7},
		{"median odd", []float64{3, 1, 2}, 0.5, 2},
		{"median even", []float64{4, 1, 3, 2}, 0.5, 2.5},
		{"interpolated", []float64{0, 10}, 0.25, 2.5},
		{"clamped high", []float64{1, 2, 3}, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Quantile(tt.values, tt.q), 1e-9)
		})
	}
}

func TestMedian(t *testing.T) {
	_, ok := Median(nil)
	assert.False(t, ok)

	m, ok := Median([]float64{10, 30, 20})
	assert.True(t, ok)
	assert.Equal(t, 20.0, m)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.InDelta(t, math.Sqrt(32.0/7.0), SampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestWinsorize(t *testing.T) {
	values := []float64{1, 2, 3, 4, 100}
	out := Winsorize(values, 0.05, 0.95)
	require.Len(t, out, len(values))
	assert.Greater(t, out[0], 1.0, "lower tail is pulled up")
	assert.Less(t, out[4], 100.0, "upper tail is pulled down")
	assert.Equal(t, []float64{1, 2, 3, 4, 100}, values, "input is not mutated")

	assert.Equal(t, values, Winsorize(values, 0, 0), "zero bounds disable clipping")
}

func TestFixedCap(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		lo, hi   float64
		expected float64
	}{
		{"inside", 2500, 0, 5000, 0.5},
		{"above cap clamps", 9000, 0, 5000, 1},
		{"below floor clamps", -5, 0, 100, 0},
		{"governance range", 0, -2.5, 2.5, 0.5},
		{"degenerate bounds", 10, 3, 3, Neutral},
		{"swapped bounds", 25, 100, 0, 0.25},
		{"nan", math.NaN(), 0, 1, Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, FixedCap(tt.v, tt.lo, tt.hi), 1e-9)
		})
	}
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, MinMax([]float64{10, 20, 30}))
	assert.Equal(t, []float64{Neutral, Neutral}, MinMax([]float64{4, 4}), "degenerate range is neutral")
	assert.Empty(t, MinMax(nil))
}

func TestZScore(t *testing.T) {
	t.Run("sigma3 is centred on neutral", func(t *testing.T) {
		out := ZScore([]float64{1, 2, 3}, schema.RescaleSigma3)
		assert.InDelta(t, 0.5, out[1], 1e-9)
		assert.Less(t, out[0], out[1])
		assert.Greater(t, out[2], out[1])
		for _, v := range out {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	})

	t.Run("observed range spans zero to one", func(t *testing.T) {
		out := ZScore([]float64{1, 2, 3}, schema.RescaleObserved)
		assert.InDelta(t, 0.0, out[0], 1e-9)
		assert.InDelta(t, 1.0, out[2], 1e-9)
	})

	t.Run("zero variance is neutral", func(t *testing.T) {
		assert.Equal(t, []float64{Neutral, Neutral, Neutral}, ZScore([]float64{9, 9, 9}, schema.RescaleSigma3))
	})
}

func TestPercentileRank(t *testing.T) {
	out := PercentileRank([]float64{10, 20, 20, 40})
	assert.InDelta(t, 0.25, out[0], 1e-9)
	assert.InDelta(t, 0.625, out[1], 1e-9)
	assert.InDelta(t, 0.625, out[2], 1e-9)
	assert.InDelta(t, 1.0, out[3], 1e-9)

	assert.Equal(t, []float64{Neutral, Neutral}, PercentileRank([]float64{3, 3}))
}

func TestPercentify(t *testing.T) {
	assert.Equal(t, 50.0, Percentify(0.5))
	assert.Equal(t, 100.0, Percentify(1.0))
	assert.Equal(t, 1.5, Percentify(1.5))
	assert.Equal(t, 75.0, Percentify(75))
}

func TestScalerScaleBatch(t *testing.T) {
	samples := []Sample{{Value: 80}, {Value: 40}, {Value: 10}}

	t.Run("fixed cap keeps absolute scale", func(t *testing.T) {
		s := Scaler{Method: schema.FixedCapScaling, Min: 0, Max: 100}
		assert.InDeltaSlice(t, []float64{0.8, 0.4, 0.1}, s.ScaleBatch(samples), 1e-9)
	})

	t.Run("log10 reserves", func(t *testing.T) {
		s := Scaler{Method: schema.FixedCapScaling, Min: 2, Max: 6, Transform: schema.Log10Transform}
		out := s.ScaleBatch([]Sample{{Value: 10000}, {Value: 0}, {Value: 1e7}})
		assert.InDeltaSlice(t, []float64{0.5, 0, 1}, out, 1e-9)
	})

	t.Run("fraction auto-detect", func(t *testing.T) {
		s := Scaler{Method: schema.FixedCapScaling, Min: 0, Max: 100, FractionAutoDetect: true}
		assert.InDeltaSlice(t, []float64{0.25, 0.25}, s.ScaleBatch([]Sample{{Value: 0.25}, {Value: 25}}), 1e-9)
	})

	t.Run("grouped min-max", func(t *testing.T) {
		s := Scaler{Method: schema.MinMaxScaling, GroupByYear: true}
		out := s.ScaleBatch([]Sample{
			{Value: 1, Group: 2020}, {Value: 3, Group: 2020},
			{Value: 100, Group: 2021},
		})
		assert.InDeltaSlice(t, []float64{0, 1, Neutral}, out, 1e-9)
	})

	t.Run("winsorize without quantiles clips at defaults", func(t *testing.T) {
		samples := make([]Sample, 0, 21)
		for i := range 20 {
			samples = append(samples, Sample{Value: float64(i)})
		}
		samples = append(samples, Sample{Value: 1e6})

		values := make([]float64, len(samples))
		for i, smp := range samples {
			values[i] = smp.Value
		}
		want := ZScore(Clip(values), schema.RescaleSigma3)

		s := Scaler{Method: schema.ZScoreScaling, Winsorize: true, Rescale: schema.RescaleSigma3}
		assert.InDeltaSlice(t, want, s.ScaleBatch(samples), 1e-9)

		plain := Scaler{Method: schema.ZScoreScaling, Rescale: schema.RescaleSigma3}
		assert.NotEqual(t, want, plain.ScaleBatch(samples), "unset flag leaves outliers in place")
	})

	t.Run("winsorized z-score stays bounded", func(t *testing.T) {
		s := Scaler{Method: schema.ZScoreScaling, WinsorizeLower: 0.05, WinsorizeUpper: 0.95, Rescale: schema.RescaleSigma3}
		for _, v := range s.ScaleBatch([]Sample{{Value: 1}, {Value: 2}, {Value: 1e9}}) {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	})
}

func TestExtremeMagnitudes(t *testing.T) {
	values := []float64{-1e308, 1e308, 0}

	t.Run("min-max", func(t *testing.T) {
		assert.InDeltaSlice(t, []float64{0, 1, 0.5}, MinMax(values), 1e-9)
	})

	t.Run("z-score", func(t *testing.T) {
		for _, mode := range []schema.RescaleMode{schema.RescaleSigma3, schema.RescaleObserved} {
			out := ZScore(values, mode)
			for _, v := range out {
				require.False(t, math.IsNaN(v), mode)
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
			assert.Less(t, out[0], out[2])
			assert.Less(t, out[2], out[1])
		}
	})

	t.Run("fixed cap over the full range", func(t *testing.T) {
		assert.InDelta(t, 0.5, FixedCap(0, -math.MaxFloat64, math.MaxFloat64), 1e-9)
	})

	t.Run("non-finite input is neutral", func(t *testing.T) {
		s := Scaler{Method: schema.MinMaxScaling}
		out := s.ScaleBatch([]Sample{{Value: math.Inf(1)}, {Value: 1}, {Value: 2}})
		for _, v := range out {
			assert.False(t, math.IsNaN(v))
		}
		assert.Equal(t, Neutral, out[0])
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.Equal(t, 0.25, Clamp(0.25, 0, 1))
	assert.Equal(t, 50.0, Clamp(math.NaN(), 0, 100), "NaN maps to the midpoint")
}

func TestApplyDirection(t *testing.T) {
	assert.InDelta(t, 0.8, ApplyDirection(0.8, schema.HigherIsWorse), 1e-9)
	assert.InDelta(t, 0.2, ApplyDirection(0.8, schema.HigherIsBetter), 1e-9)
}

func TestResolveDirection(t *testing.T) {
	tokens := []string{"restoration", "reuse", "efficiency"}
	tests := []struct {
		metric   string
		dir      schema.Direction
		expected schema.Direction
	}{
		{"land_restoration_ratio", schema.DirectionAuto, schema.HigherIsBetter},
		{"ash_REUSE_pct", schema.DirectionAuto, schema.HigherIsBetter},
		{"co2_emissions_mt", schema.DirectionAuto, schema.HigherIsWorse},
		{"co2_emissions_mt", "", schema.HigherIsWorse},
		{"land_restoration_ratio", schema.HigherIsWorse, schema.HigherIsWorse},
		{"production_mt", schema.HigherIsBetter, schema.HigherIsBetter},
	}

	for _, tt := range tests {
		t.Run(tt.metric+"/"+string(tt.dir), func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveDirection(tt.metric, tt.dir, tokens))
		})
	}
}

// TestDirectionalConsistency checks that a larger raw value never yields a
// smaller contribution for higher-is-worse metrics, and the reverse for
// higher-is-better metrics.
func TestDirectionalConsistency(t *testing.T) {
	methods := []Scaler{
		{Method: schema.FixedCapScaling, Min: 0, Max: 100},
		{Method: schema.MinMaxScaling},
		{Method: schema.ZScoreScaling, Rescale: schema.RescaleSigma3},
		{Method: schema.ZScoreScaling, Rescale: schema.RescaleObserved},
		{Method: schema.PercentileScaling},
	}
	for _, s := range methods {
		t.Run(string(s.Method)+"/"+string(s.Rescale), func(t *testing.T) {
			out := s.ScaleBatch([]Sample{{Value: 70}, {Value: 30}})
			assert.GreaterOrEqual(t, ApplyDirection(out[0], schema.HigherIsWorse), ApplyDirection(out[1], schema.HigherIsWorse))
			assert.LessOrEqual(t, ApplyDirection(out[0], schema.HigherIsBetter), ApplyDirection(out[1], schema.HigherIsBetter))
		})
	}
}

// TestDegeneratePopulation checks that identical values never divide by zero
// for population-relative methods and land on the neutral value.
func TestDegeneratePopulation(t *testing.T) {
	for _, method := range []schema.ScalingMethod{schema.MinMaxScaling, schema.ZScoreScaling, schema.PercentileScaling} {
		t.Run(string(method), func(t *testing.T) {
			out := Scaler{Method: method}.ScaleBatch([]Sample{{Value: 12}, {Value: 12}, {Value: 12}})
			assert.Equal(t, []float64{Neutral, Neutral, Neutral}, out)
		})
	}
}
