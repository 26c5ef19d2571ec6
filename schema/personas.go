package schema

// Built-in persona names.
const (
	InvestorPersona    = "investor"
	PolicyMakerPersona = "policy_maker"
	NGOPersona         = "ngo"
	AnalystPersona     = "analyst" // default
	CitizenPersona     = "citizen"
)

// DefaultPersona is used when a requested persona is unknown.
const DefaultPersona = AnalystPersona

// AllPersonas returns a list of all built-in personas.
var AllPersonas = []string{InvestorPersona, PolicyMakerPersona, NGOPersona, AnalystPersona, CitizenPersona}

// PersonaDescriptions describes the focus of each built-in persona.
var PersonaDescriptions = map[string]string{
	InvestorPersona:    "Financial returns and market risk - subsidies, carbon exposure and economic rents dominate",
	PolicyMakerPersona: "Balanced public policy - energy necessity, fiscal exposure and emissions weigh equally",
	NGOPersona:         "Environmental and social impact - emissions and ecological damage dominate",
	AnalystPersona:     "Neutral baseline - every dimension carries the same weight",
	CitizenPersona:     "Everyday life - energy security, local environment and infrastructure",
}

// GetDefaultWeights returns the default weight map for a given persona.
// Unknown personas return nil.
func GetDefaultWeights(persona string) map[Dimension]float64 {
	switch persona {
	case InvestorPersona:
		return map[Dimension]float64{
			EconomicDim:          0.25,
			ArtificialSupportDim: 0.20,
			EmissionsDim:         0.20,
			InfrastructureDim:    0.15,
			ResourceDim:          0.10,
			EcologicalDim:        0.05,
			NecessityDim:         0.05,
		}
	case PolicyMakerPersona:
		return map[Dimension]float64{
			NecessityDim:         0.20,
			EconomicDim:          0.20,
			EmissionsDim:         0.20,
			InfrastructureDim:    0.15,
			EcologicalDim:        0.15,
			ArtificialSupportDim: 0.05,
			ResourceDim:          0.05,
		}
	case NGOPersona:
		return map[Dimension]float64{
			EmissionsDim:         0.25,
			EcologicalDim:        0.25,
			NecessityDim:         0.20,
			InfrastructureDim:    0.10,
			ResourceDim:          0.10,
			ArtificialSupportDim: 0.05,
			EconomicDim:          0.05,
		}
	case CitizenPersona:
		return map[Dimension]float64{
			NecessityDim:         0.25,
			EcologicalDim:        0.20,
			InfrastructureDim:    0.20,
			EconomicDim:          0.15,
			EmissionsDim:         0.10,
			ArtificialSupportDim: 0.05,
			ResourceDim:          0.05,
		}
	case AnalystPersona:
		weights := make(map[Dimension]float64, len(AllDimensions))
		for _, d := range AllDimensions {
			weights[d] = 1.0 / float64(len(AllDimensions))
		}
		return weights
	default:
		return nil
	}
}

// DefaultCountries is the country list used when no data and no explicit list exist.
var DefaultCountries = []string{
	"India", "China", "Germany", "United States", "Australia", "Indonesia", "South Africa", "Poland",
}
