package dimension

import (
	"fmt"

	"github.com/huangsam/viability/core/dataset"
	"github.com/huangsam/viability/schema"
)

// col builds a metric source.
func col(column string, kinds ...schema.DatasetKind) Source {
	return Source{Column: column, Preferred: kinds}
}

// metric builds a higher-is-worse metric capped to [0,100].
func metric(name string, weight float64, sources ...Source) MetricSpec {
	return MetricSpec{
		Name:      name,
		Sources:   sources,
		Weight:    weight,
		Direction: schema.HigherIsWorse,
		Scaling:   schema.FixedCapScaling,
		Min:       schema.MinScore,
		Max:       schema.MaxScore,
		Rescale:   schema.RescaleSigma3,
	}
}

func (m MetricSpec) capped(lo, hi float64) MetricSpec {
	m.Scaling, m.Min, m.Max = schema.FixedCapScaling, lo, hi
	return m
}

// fraction enables the fraction auto-detect on a 0-100 metric.
func (m MetricSpec) fraction() MetricSpec {
	m.FractionAutoDetect = true
	return m
}

func (m MetricSpec) better() MetricSpec {
	m.Direction = schema.HigherIsBetter
	return m
}

func (m MetricSpec) auto() MetricSpec {
	m.Direction = schema.DirectionAuto
	return m
}

func (m MetricSpec) tier(t int) MetricSpec {
	m.Tier = t
	return m
}

func (m MetricSpec) scaled(method schema.ScalingMethod) MetricSpec {
	m.Scaling = method
	return m
}

// fallbackTable builds a fallback table for the default countries in order.
func fallbackTable(scores ...float64) map[string]float64 {
	if len(scores) != len(schema.DefaultCountries) {
		panic(fmt.Sprintf("fallback table needs %d scores, got %d", len(schema.DefaultCountries), len(scores)))
	}
	table := make(map[string]float64, len(scores))
	for i, c := range schema.DefaultCountries {
		table[c] = scores[i]
	}
	return table
}

// Fallback tables follow the order of schema.DefaultCountries:
// India, China, Germany, United States, Australia, Indonesia, South Africa, Poland.

var infrastructureSpec = Spec{
	Name:    schema.InfrastructureDim,
	Purpose: "Coal lock-in from power systems, governance and physical exposure",
	Metrics: []MetricSpec{
		metric("coal_dependency_score", 0.10, col("coal_dependency_score", schema.KindCoalDependency)).fraction(),
		metric("electricity_coal_pct", 0.15, col("electricity_coal_pct", schema.KindEnergyMix)),
		metric("coal_rents_pct_gdp", 0.05, col("coal_rents_pct_gdp", schema.KindGovernance, schema.KindEnergyMix)).capped(0, 10),
		metric("electricity_access_pct", 0.15, col("electricity_access_pct", schema.KindEnergyMix)).better(),
		metric("urban_pop_pct", 0.10, col("urban_pop_pct", schema.KindEnergyMix)).better(),
		metric("pm25_exposure", 0.15, col("pm25_exposure", schema.KindEnergyMix)),
		metric("hazard_score", 0.10, col("hazard_score", schema.KindHazard)).fraction(),
		metric("control_corruption_index", 0.10, col("control_corruption_index", schema.KindGovernance)).capped(-2.5, 2.5).better(),
		metric("transition_feasibility_score", 0.10, col("transition_feasibility_score", schema.KindTransitionFeasibility)).fraction(),
	},
	Rules: []dataset.Rule{
		{AllOf: []string{"coal_dependency_score"}, Kind: schema.KindCoalDependency},
		{AllOf: []string{"transition_feasibility_score"}, Kind: schema.KindTransitionFeasibility},
		{AllOf: []string{"hazard_score"}, Kind: schema.KindHazard},
		{AnyOf: []string{"reclamation_potential_score", "reclamation_score"}, Kind: schema.KindReclamation},
		{AnyOf: []string{"root_cause_score"}, Kind: schema.KindRootCause},
		{AnyOf: []string{"control_corruption_index"}, Kind: schema.KindGovernance},
		{AnyOf: []string{"electricity_coal_pct", "electricity_access_pct", "urban_pop_pct", "pm25_exposure"}, Kind: schema.KindEnergyMix},
	},
	BetterTokens:    []string{"access", "corruption"},
	Neutral:         schema.NeutralScore,
	Fallback:        fallbackTable(65, 75, 35, 45, 60, 70, 80, 55),
	FallbackDefault: 55,
}

var necessitySpec = Spec{
	Name:    schema.NecessityDim,
	Purpose: "How much coal still underpins basic energy, health and employment needs",
	Metrics: []MetricSpec{
		metric("necessity_score1", 0.40, col("necessity_score1", schema.KindNecessityComposite)).fraction(),
		metric("necessity_energy_fulfillment_score", 0.20, col("necessity_energy_fulfillment_score", schema.KindEnergyFulfillment)),
		metric("necessity_health_score", 0.20, col("necessity_health_score", schema.KindHealth)),
		metric("necessity_education_score", 0.10, col("necessity_education_score", schema.KindHealth)),
		metric("jobs_coal_estimated", 0.05, col("jobs_coal_estimated", schema.KindEmployment)).capped(0, 3_000_000),
		metric("share_electricity_coal_pct", 0.05, col("share_electricity_coal_pct", schema.KindEmployment, schema.KindEnergyFulfillment)),
	},
	Rules: []dataset.Rule{
		{AllOf: []string{"necessity_score1"}, Kind: schema.KindNecessityComposite},
		{AllOf: []string{"necessity_energy_fulfillment_score"}, Kind: schema.KindEnergyFulfillment},
		{AnyOf: []string{"necessity_health_score", "necessity_education_score"}, Kind: schema.KindHealth},
		{AnyOf: []string{"jobs_coal_estimated", "share_electricity_coal_pct"}, Kind: schema.KindEmployment},
	},
	Neutral:         schema.NeutralScore,
	Fallback:        fallbackTable(75, 85, 40, 55, 65, 80, 90, 70),
	FallbackDefault: 65,
}

var resourceSpec = Spec{
	Name:    schema.ResourceDim,
	Purpose: "Scale of coal output and reserves and the land and water they consume",
	Metrics: []MetricSpec{
		metric("production_mt", 0.30, col("production_mt", schema.KindReserves, schema.KindWater, schema.KindResourceOutput)).capped(0, 5000),
		func() MetricSpec {
			m := metric("proven_reserves_mt", 0.30, col("proven_reserves_mt", schema.KindReserves, schema.KindResourceOutput)).capped(2, 6)
			m.Transform = schema.Log10Transform
			return m
		}(),
		metric("r_p_ratio", 0.20, col("r_p_ratio", schema.KindReserves)).capped(0, 200),
		metric("land_mined_share", 0.10, col("land_mined_share", schema.KindReserves)).fraction().better(),
		metric("water_usage_share", 0.05, col("water_usage_share", schema.KindWater)).fraction().better(),
		metric("production_share", 0.05, col("production_share", schema.KindResourceOutput)).fraction(),
	},
	Rules: []dataset.Rule{
		{AnyOf: []string{"r_p_ratio", "land_mined_share"}, Kind: schema.KindReserves},
		{AnyOf: []string{"water_usage_share", "water_usage_mm3"}, Kind: schema.KindWater},
		{AnyOf: []string{"production_share", "waste_to_use_ratio", "coal_ash_mt"}, Kind: schema.KindResourceOutput},
	},
	Neutral:         schema.NeutralScore,
	Fallback:        fallbackTable(70, 85, 45, 80, 90, 75, 60, 55),
	FallbackDefault: 60,
}

var artificialSupportSpec = Spec{
	Name:    schema.ArtificialSupportDim,
	Purpose: "Subsidies, trade protection and tax privileges that keep coal competitive",
	Metrics: []MetricSpec{
		metric("score_direct_subsidy", 0.25, col("score_direct_subsidy", schema.KindSupportScores)).fraction(),
		metric("score_tariff_trade_protection", 0.25, col("score_tariff_trade_protection", schema.KindSupportScores)).fraction(),
		metric("score_tax_privilege", 0.25, col("score_tax_privilege", schema.KindSupportScores)).fraction(),
		metric("score_dependency_conflict", 0.25, col("score_dependency_conflict", schema.KindSupportScores)).fraction(),
		metric("fossil_fuel_subsidy_usd", 0.5, col("fossil_fuel_subsidy_usd", schema.KindFossilSubsidies)).scaled(schema.MinMaxScaling).tier(1),
		metric("coal_rent_usd", 0.5, col("coal_rent_usd", schema.KindCoalRents)).scaled(schema.MinMaxScaling).tier(1),
	},
	Rules: []dataset.Rule{
		{AnyOf: []string{"score_direct_subsidy", "score_tariff_trade_protection", "score_tax_privilege", "score_dependency_conflict"}, Kind: schema.KindSupportScores},
		{AnyOf: []string{"fossil_fuel_subsidy_usd", "subsidy_usd"}, Kind: schema.KindFossilSubsidies},
		{AnyOf: []string{"coal_rent_usd"}, Kind: schema.KindCoalRents},
		{AnyOf: []string{"coal_share_electricity"}, Kind: schema.KindPowerMix},
		{AnyOf: []string{"coal_export_share_percent"}, Kind: schema.KindTrade},
	},
	Neutral:         schema.NeutralScore,
	Fallback:        fallbackTable(65, 80, 25, 45, 70, 75, 80, 55),
	FallbackDefault: 50,
}

var ecologicalSpec = Spec{
	Name:    schema.EcologicalDim,
	Purpose: "Land, forest and air damage attributable to coal extraction and burning",
	Metrics: []MetricSpec{
		metric("production_mt", 0.20, col("production_mt")).capped(0, 5000),
		metric("deforestation_ha_per_year", 0.25, col("deforestation_ha_per_year", schema.KindLandImpact)).capped(0, 1_000_000),
		metric("land_mined_ha", 0.20, col("land_mined_ha", schema.KindLandImpact)).capped(0, 500_000),
		metric("land_restoration_ratio", 0.15, col("land_restoration_ratio", schema.KindLandImpact)).fraction().auto(),
		metric("co2_emissions_mt", 0.10, col("co2_emissions_mt", schema.KindCO2)).capped(0, 15000),
		metric("so2_emissions_mt", 0.05, col("so2_emissions_mt", schema.KindAirPollutants)).capped(0, 100),
		metric("nox_emissions_mt", 0.05, col("nox_emissions_mt", schema.KindAirPollutants)).capped(0, 50),
	},
	Rules: []dataset.Rule{
		{AnyOf: []string{"deforestation_ha_per_year", "land_mined_ha", "land_restoration_ratio"}, Kind: schema.KindLandImpact},
		{AnyOf: []string{"co2_emissions_mt"}, Kind: schema.KindCO2},
		{AnyOf: []string{"so2_emissions_mt", "nox_emissions_mt"}, Kind: schema.KindAirPollutants},
	},
	BetterTokens:    []string{"restoration", "reuse", "efficiency", "recycl", "reclamation"},
	Neutral:         schema.NeutralScore,
	Fallback:        fallbackTable(75, 85, 35, 55, 50, 70, 65, 60),
	FallbackDefault: 60,
}

var economicSpec = Spec{
	Name:    schema.EconomicDim,
	Purpose: "Share of national income, power and exports tied to coal",
	Metrics: []MetricSpec{
		metric("coal_rents_pct", 0.40,
			col("coal_rents_pct_of_gdp", schema.KindCoalRents),
			col("coal_rents_pct", schema.KindCoalRents),
		).capped(0, 10),
		func() MetricSpec {
			m := metric("coal_rent_usd", 0.30, col("coal_rent_usd", schema.KindCoalRents)).scaled(schema.ZScoreScaling)
			m.Winsorize = true
			return m
		}(),
		metric("coal_share_electricity", 0.20,
			col("coal_share_of_electricity_latest", schema.KindPowerMix),
			col("coal_share_electricity", schema.KindPowerMix),
		),
		metric("coal_export_share_percent", 0.10, col("coal_export_share_percent", schema.KindTrade)),
	},
	Rules: []dataset.Rule{
		{AnyOf: []string{"coal_rents_pct_of_gdp", "coal_rents_pct", "coal_rent_usd"}, Kind: schema.KindCoalRents},
		{AnyOf: []string{"coal_share_of_electricity_latest", "coal_share_electricity"}, Kind: schema.KindPowerMix},
		{AnyOf: []string{"coal_export_share_percent"}, Kind: schema.KindTrade},
	},
	Neutral:         schema.NeutralScore,
	Fallback:        fallbackTable(60, 80, 25, 45, 55, 70, 75, 58),
	FallbackDefault: 55,
}

var emissionsSpec = Spec{
	Name:    schema.EmissionsDim,
	Purpose: "Direct coal CO2, global share and the readiness to price or abate it",
	Metrics: []MetricSpec{
		metric("coal_co2_emissions", 0.30, col("coal_co2_emissions", schema.KindEmissionsIntensity, schema.KindGlobalShare)).capped(0, 15000),
		metric("global_share", 0.30, col("global_share", schema.KindGlobalShare)).fraction(),
		metric("tax_share", 0.20,
			col("share_carbontax", schema.KindAbatementReadiness),
			col("share_covered_carbon_price", schema.KindPolicyExemptEmitter),
		).fraction(),
		metric("carbon_abatement_readiness", 0.15, col("carbon_abatement_readiness", schema.KindAbatementReadiness)).fraction(),
		metric("emissions_intensity_tco2_per_twh", 0.05, col("emissions_intensity_tco2_per_twh", schema.KindEmissionsIntensity)).capped(0, 2000),
	},
	Rules: []dataset.Rule{
		{AllOf: []string{"emissions_intensity_tco2_per_twh"}, Kind: schema.KindEmissionsIntensity},
		{AllOf: []string{"global_share"}, Kind: schema.KindGlobalShare},
		{AnyOf: []string{"carbon_abatement_readiness", "share_carbontax"}, Kind: schema.KindAbatementReadiness},
		{AllOf: []string{"share_covered_carbon_price"}, Kind: schema.KindPolicyExemptEmitter},
	},
	Neutral:         schema.NeutralScore,
	Fallback:        fallbackTable(68, 75, 25, 32, 45, 58, 72, 55),
	FallbackDefault: 55,
}

// DefaultSpecs returns a fresh copy of the built-in specs keyed by dimension.
func DefaultSpecs() map[schema.Dimension]Spec {
	specs := map[schema.Dimension]Spec{}
	for _, s := range []Spec{
		infrastructureSpec,
		necessitySpec,
		resourceSpec,
		artificialSupportSpec,
		ecologicalSpec,
		economicSpec,
		emissionsSpec,
	} {
		specs[s.Name] = s.Clone()
	}
	return specs
}

// CloneSpecs deep-copies a spec set.
func CloneSpecs(specs map[schema.Dimension]Spec) map[schema.Dimension]Spec {
	out := make(map[schema.Dimension]Spec, len(specs))
	for dim, s := range specs {
		out[dim] = s.Clone()
	}
	return out
}

// ValidateAll validates every spec in dimension order.
func ValidateAll(specs map[schema.Dimension]Spec) error {
	for _, dim := range schema.AllDimensions {
		s, ok := specs[dim]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrInvalidSpec, dim)
		}
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
