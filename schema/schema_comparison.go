package schema

// PersonaComparison holds the composite index of each country under several personas.
type PersonaComparison struct {
	Countries []string                      `json:"countries"`
	Personas  []string                      `json:"personas"`
	Index     map[string]map[string]float64 `json:"index"` // persona -> country -> index
}

// Spread returns the difference between the highest and lowest index of a country
// across the compared personas.
func (c PersonaComparison) Spread(country string) float64 {
	first := true
	var lo, hi float64
	for _, p := range c.Personas {
		v, ok := c.Index[p][country]
		if !ok {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return hi - lo
}

// DimensionSummary holds descriptive statistics for one dimension column.
type DimensionSummary struct {
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Count    int     `json:"count"`
	Coverage float64 `json:"coverage"`
}

// ScoreValidation is the report produced when checking a score table against a persona.
type ScoreValidation struct {
	Valid   bool                           `json:"valid"`
	Issues  []string                       `json:"issues,omitempty"`
	Summary map[Dimension]DimensionSummary `json:"summary"`
}

// PersonaInfo describes a persona for display.
type PersonaInfo struct {
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Weights       map[Dimension]float64 `json:"weights"`
	TopDimensions []Dimension           `json:"top_dimensions"`
	Custom        bool                  `json:"custom,omitempty"`
}
