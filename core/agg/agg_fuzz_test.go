package agg_test

import (
	"math"
	"testing"

	"github.com/huangsam/viability/core/agg"
	"github.com/huangsam/viability/schema"
)

func FuzzComposite(f *testing.F) {
	f.Add(80.0, 40.0, 10.0, 0.5, 0.5)
	f.Add(-20.0, 150.0, 50.0, 0.1, 3.0)
	f.Add(0.0, 0.0, 0.0, 1.0, 0.0)
	f.Add(1e308, -1e308, math.NaN(), 1e308, 1e308)
	f.Add(50.0, 50.0, 50.0, math.Inf(1), math.NaN())

	a := agg.NewAggregator(nil, discardLogger())
	f.Fuzz(func(t *testing.T, s1, s2, s3, w1, w2 float64) {

		table := schema.NewScoreTable([]string{"A", "B", "C"}, []string{"economic", "emissions"})
		table.Set("A", "economic", s1)
		table.Set("B", "economic", s2)
		table.Set("C", "emissions", s3)

		result, err := a.CompositeWithWeights(table, "fuzz", map[schema.Dimension]float64{
			schema.EconomicDim:  w1,
			schema.EmissionsDim: w2,
		})
		if err != nil {
			if usable(w1) || usable(w2) {
				t.Fatalf("unexpected error with positive weights: %v", err)
			}
			return
		}
		for c, v := range result.Index {
			if v < schema.MinScore || v > schema.MaxScore || math.IsNaN(v) {
				t.Fatalf("index for %s out of bounds: %v", c, v)
			}
		}
	})
}

// usable reports whether a weight takes part in the composite.
func usable(w float64) bool {
	return w > 0 && !math.IsInf(w, 0)
}
