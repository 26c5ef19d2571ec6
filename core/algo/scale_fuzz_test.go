package algo

import (
	"math"
	"testing"

	"github.com/huangsam/viability/schema"
)

// FuzzFixedCap fuzzes the scaler with arbitrary values and bounds.
func FuzzFixedCap(f *testing.F) {
	f.Add(80.0, 0.0, 100.0, false)
	f.Add(0.5, 0.0, 100.0, true)
	f.Add(-1e12, -2.5, 2.5, false)
	f.Add(1e12, 5.0, 5.0, true)

	f.Fuzz(func(t *testing.T, v, lo, hi float64, fraction bool) {
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			t.Skip()
		}
		s := Scaler{Method: schema.FixedCapScaling, Min: lo, Max: hi, FractionAutoDetect: fraction}
		for _, dir := range []schema.Direction{schema.HigherIsWorse, schema.HigherIsBetter} {
			out := ApplyDirection(s.ScaleBatch([]Sample{{Value: v}})[0], dir)
			if math.IsNaN(out) || out < 0 || out > 1 {
				t.Errorf("scaled value out of bounds: v=%v lo=%v hi=%v dir=%s -> %v", v, lo, hi, dir, out)
			}
		}
	})
}

// FuzzScaleBatch fuzzes the population-relative methods with arbitrary batches.
func FuzzScaleBatch(f *testing.F) {
	f.Add(1.0, 2.0, 3.0, uint8(0))
	f.Add(-1e308, 1e308, 0.0, uint8(1))
	f.Add(1e308, 1e308, -1e308, uint8(2))
	f.Add(5.0, 5.0, 5.0, uint8(3))

	scalers := []Scaler{
		{Method: schema.MinMaxScaling},
		{Method: schema.ZScoreScaling, Rescale: schema.RescaleSigma3},
		{Method: schema.ZScoreScaling, Rescale: schema.RescaleObserved, WinsorizeLower: ClipLower, WinsorizeUpper: ClipUpper},
		{Method: schema.PercentileScaling},
	}
	f.Fuzz(func(t *testing.T, a, b, c float64, pick uint8) {
		s := scalers[int(pick)%len(scalers)]
		out := s.ScaleBatch([]Sample{{Value: a}, {Value: b}, {Value: c}})
		for i, v := range out {
			if math.IsNaN(v) || v < 0 || v > 1 {
				t.Errorf("%s scaled value %d out of bounds: in=%v,%v,%v -> %v", s.Method, i, a, b, c, v)
			}
		}
	})
}
