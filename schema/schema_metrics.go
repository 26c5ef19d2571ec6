package schema

// MetricDefinition describes one metric of a dimension for display purposes.
type MetricDefinition struct {
	Name      string        `json:"name"`
	Sources   []string      `json:"sources"`
	Weight    float64       `json:"weight"`
	Direction Direction     `json:"direction"`
	Scaling   ScalingMethod `json:"scaling"`
	Bounds    string        `json:"bounds,omitempty"` // Only set for fixed-cap scaling
	Tier      int           `json:"tier"`
	Note      string        `json:"note,omitempty"`
}

// DimensionDefinition describes how a dimension score is computed.
type DimensionDefinition struct {
	Name            Dimension          `json:"name"`
	Purpose         string             `json:"purpose"`
	Metrics         []MetricDefinition `json:"metrics"`
	Formula         string             `json:"formula"`
	Neutral         float64            `json:"neutral"`
	FallbackDefault float64            `json:"fallback_default"`
}

// PersonaFormula describes how a persona combines dimensions.
type PersonaFormula struct {
	Name    string             `json:"name"`
	Purpose string             `json:"purpose"`
	Weights map[string]float64 `json:"weights"`
	Formula string             `json:"formula"`
}

// MetricsRenderModel contains all processed data needed for displaying metric definitions.
type MetricsRenderModel struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Dimensions  []DimensionDefinition `json:"dimensions"`
	Personas    []PersonaFormula      `json:"personas"`
}
