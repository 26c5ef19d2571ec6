package schema

// Custom string types for type safety.
type (
	// Dimension represents one of the seven scoring axes.
	Dimension string

	// DatasetKind represents the classification of a dataset by its column signature.
	DatasetKind string

	// Direction represents how a raw metric relates to its dimension score.
	Direction string

	// ScalingMethod represents how a raw metric is mapped onto [0,1].
	ScalingMethod string

	// RescaleMode represents how z-scores are mapped onto [0,1].
	RescaleMode string

	// Transform represents a value transform applied before scaling.
	Transform string

	// OutputMode represents the format of the output.
	OutputMode string

	// SourceBackend represents where datasets are loaded from.
	SourceBackend string

	// IssueKind represents a data-quality problem found in a dataset.
	IssueKind string

	// Severity represents how serious a data-quality issue is.
	Severity string
)

// Score bounds and the neutral value used when no evidence exists.
const (
	MinScore     = 0.0
	MaxScore     = 100.0
	NeutralScore = 50.0
)

// All dimensions supported.
const (
	InfrastructureDim    Dimension = "infrastructure"
	NecessityDim         Dimension = "necessity"
	ResourceDim          Dimension = "resource"
	ArtificialSupportDim Dimension = "artificial_support"
	EcologicalDim        Dimension = "ecological"
	EconomicDim          Dimension = "economic"
	EmissionsDim         Dimension = "emissions"
)

// AllDimensions lists every dimension in canonical display order.
var AllDimensions = []Dimension{
	InfrastructureDim,
	NecessityDim,
	ResourceDim,
	ArtificialSupportDim,
	EcologicalDim,
	EconomicDim,
	EmissionsDim,
}

// ValidDimensions lists all valid dimensions.
var ValidDimensions = map[Dimension]struct{}{
	InfrastructureDim:    {},
	NecessityDim:         {},
	ResourceDim:          {},
	ArtificialSupportDim: {},
	EcologicalDim:        {},
	EconomicDim:          {},
	EmissionsDim:         {},
}

// Dataset kinds. OtherKind is assigned when no rule matches.
const (
	OtherKind DatasetKind = "other"

	// infrastructure
	KindCoalDependency        DatasetKind = "coal_dependency"
	KindTransitionFeasibility DatasetKind = "transition_feasibility"
	KindHazard                DatasetKind = "hazard"
	KindReclamation           DatasetKind = "reclamation_potential"
	KindRootCause             DatasetKind = "root_cause"
	KindEnergyMix             DatasetKind = "energy_mix"
	KindGovernance            DatasetKind = "governance"

	// necessity
	KindNecessityComposite DatasetKind = "necessity_composite"
	KindEnergyFulfillment  DatasetKind = "energy_fulfillment"
	KindHealth             DatasetKind = "health"
	KindEmployment         DatasetKind = "employment"

	// resource
	KindReserves       DatasetKind = "resource_reserves"
	KindWater          DatasetKind = "resource_water"
	KindResourceOutput DatasetKind = "resource_output"

	// artificial_support and economic
	KindSupportScores   DatasetKind = "support_scores"
	KindFossilSubsidies DatasetKind = "fossil_subsidies"
	KindCoalRents       DatasetKind = "coal_rents"
	KindPowerMix        DatasetKind = "power_mix"
	KindTrade           DatasetKind = "trade"

	// ecological
	KindLandImpact    DatasetKind = "land_impact"
	KindCO2           DatasetKind = "co2"
	KindAirPollutants DatasetKind = "air_pollutants"

	// emissions
	KindEmissionsIntensity  DatasetKind = "total_emissions_intensity"
	KindGlobalShare         DatasetKind = "absolute_global_emissions_share"
	KindAbatementReadiness  DatasetKind = "carbon_abatement_readiness"
	KindPolicyExemptEmitter DatasetKind = "policy_exempt_emissions"
)

// ValidDatasetKinds lists all valid dataset kinds.
var ValidDatasetKinds = map[DatasetKind]struct{}{
	OtherKind:                 {},
	KindCoalDependency:        {},
	KindTransitionFeasibility: {},
	KindHazard:                {},
	KindReclamation:           {},
	KindRootCause:             {},
	KindEnergyMix:             {},
	KindGovernance:            {},
	KindNecessityComposite:    {},
	KindEnergyFulfillment:     {},
	KindHealth:                {},
	KindEmployment:            {},
	KindReserves:              {},
	KindWater:                 {},
	KindResourceOutput:        {},
	KindSupportScores:         {},
	KindFossilSubsidies:       {},
	KindCoalRents:             {},
	KindPowerMix:              {},
	KindTrade:                 {},
	KindLandImpact:            {},
	KindCO2:                   {},
	KindAirPollutants:         {},
	KindEmissionsIntensity:    {},
	KindGlobalShare:           {},
	KindAbatementReadiness:    {},
	KindPolicyExemptEmitter:   {},
}

// Metric directions. Directions are relative to the dimension's own score
// orientation: HigherIsWorse values raise the score, HigherIsBetter values lower it.
const (
	HigherIsWorse  Direction = "higher_is_worse"
	HigherIsBetter Direction = "higher_is_better"
	DirectionAuto  Direction = "auto"
)

// ValidDirections lists all valid directions.
var ValidDirections = map[Direction]struct{}{
	HigherIsWorse:  {},
	HigherIsBetter: {},
	DirectionAuto:  {},
}

// All scaling methods supported.
const (
	FixedCapScaling   ScalingMethod = "fixed_cap" // default
	MinMaxScaling     ScalingMethod = "min_max"
	ZScoreScaling     ScalingMethod = "z_score"
	PercentileScaling ScalingMethod = "percentile"
)

// ValidScalingMethods lists all valid scaling methods.
var ValidScalingMethods = map[ScalingMethod]struct{}{
	FixedCapScaling:   {},
	MinMaxScaling:     {},
	ZScoreScaling:     {},
	PercentileScaling: {},
}

// Z-score rescale modes.
const (
	RescaleSigma3   RescaleMode = "sigma3" // default
	RescaleObserved RescaleMode = "observed"
)

// Value transforms.
const (
	NoTransform    Transform = ""
	Log10Transform Transform = "log10"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// All dataset source backends supported.
const (
	CSVSource        SourceBackend = "csv" // default
	SQLiteSource     SourceBackend = "sqlite"
	MySQLSource      SourceBackend = "mysql"
	PostgreSQLSource SourceBackend = "postgresql"
)

// ValidSourceBackends lists all valid source backends.
var ValidSourceBackends = map[SourceBackend]struct{}{
	CSVSource:        {},
	SQLiteSource:     {},
	MySQLSource:      {},
	PostgreSQLSource: {},
}

// Data-quality issue kinds.
const (
	IssueEmptyTable    IssueKind = "empty_table"
	IssueHighMissing   IssueKind = "high_missing"
	IssueZeroVariance  IssueKind = "zero_variance"
	IssueDuplicateRows IssueKind = "duplicate_rows"
)

// Issue severities.
const (
	SeverityMajor Severity = "major"
	SeverityMinor Severity = "minor"
)
