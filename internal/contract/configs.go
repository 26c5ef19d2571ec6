package contract

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/viability/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultLogLevel    = "warn"
	DefaultDataDir     = "data"
)

// weightSumTolerance is how far a persona's weights may drift from 1.0.
const weightSumTolerance = 0.001

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// DimensionWeightsRaw holds the custom weights of a single persona.
// Use float64 pointers so that only named fields override the defaults.
type DimensionWeightsRaw struct {
	Infrastructure    *float64 `mapstructure:"infrastructure"`
	Necessity         *float64 `mapstructure:"necessity"`
	Resource          *float64 `mapstructure:"resource"`
	ArtificialSupport *float64 `mapstructure:"artificial_support"`
	Ecological        *float64 `mapstructure:"ecological"`
	Economic          *float64 `mapstructure:"economic"`
	Emissions         *float64 `mapstructure:"emissions"`
}

// fields pairs each raw field with its dimension.
func (w *DimensionWeightsRaw) fields() map[schema.Dimension]*float64 {
	return map[schema.Dimension]*float64{
		schema.InfrastructureDim:    w.Infrastructure,
		schema.NecessityDim:         w.Necessity,
		schema.ResourceDim:          w.Resource,
		schema.ArtificialSupportDim: w.ArtificialSupport,
		schema.EcologicalDim:        w.Ecological,
		schema.EconomicDim:          w.Economic,
		schema.EmissionsDim:         w.Emissions,
	}
}

// Config holds the runtime configuration for a scoring run.
// This struct remains the "final, validated" config.
type Config struct {
	Persona     string
	Countries   []string
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	Ascending   bool
	Explain     bool
	Workers     int
	LogLevel    slog.Level

	SourceBackend   schema.SourceBackend
	DataDir         string
	SourceDBConnect string // Please use env var as this is plaintext

	DimensionsFile string // YAML overrides for dimension specs
	MetricsFile    string // Prometheus textfile output

	// CustomPersonas is a mapping of [PersonaName][Dimension] = Weight.
	// Built-in personas appear here only when the config file touches them.
	CustomPersonas map[string]map[schema.Dimension]float64

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Persona         string `mapstructure:"persona"`
	Countries       string `mapstructure:"countries"`
	Limit           int    `mapstructure:"limit"`
	Precision       int    `mapstructure:"precision"`
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Width           int    `mapstructure:"width"`
	Color           string `mapstructure:"color"`
	Ascending       bool   `mapstructure:"ascending"`
	Workers         int    `mapstructure:"workers"`
	LogLevel        string `mapstructure:"log-level"`
	Source          string `mapstructure:"source"`
	DataDir         string `mapstructure:"data-dir"`
	SourceDBConnect string `mapstructure:"source-db-connect"`
	DimensionsFile  string `mapstructure:"dimensions-file"`
	MetricsFile     string `mapstructure:"metrics-file"`

	// --- Fields from scoreCmd.Flags() ---
	Explain bool `mapstructure:"explain"`

	// --- Custom personas from config file ---
	Personas map[string]*DimensionWeightsRaw `mapstructure:"personas"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Countries = slices.Clone(c.Countries)
	if c.CustomPersonas != nil {
		clone.CustomPersonas = make(map[string]map[schema.Dimension]float64, len(c.CustomPersonas))
		for name, weights := range c.CustomPersonas {
			clone.CustomPersonas[name] = maps.Clone(weights)
		}
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateSourceConfig(cfg, input); err != nil {
		return err
	}
	if err := processCustomPersonas(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for the MySQL and PostgreSQL dataset sources.
func ValidateDatabaseConnectionString(backend schema.SourceBackend, connStr string) error {
	switch backend {
	case schema.CSVSource, schema.SQLiteSource:
		return nil
	case schema.MySQLSource:
		if connStr == "" {
			return fmt.Errorf("source-db-connect is required when using %s source", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLSource:
		if connStr == "" {
			return fmt.Errorf("source-db-connect is required when using %s source", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSourceConfig validates the dataset source settings.
func validateSourceConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.SourceBackend = schema.SourceBackend(strings.ToLower(strings.TrimSpace(input.Source)))
	if cfg.SourceBackend == "" {
		cfg.SourceBackend = schema.CSVSource
	}
	if _, ok := schema.ValidSourceBackends[cfg.SourceBackend]; !ok {
		return fmt.Errorf("invalid source '%s'. must be csv, sqlite, mysql, postgresql", input.Source)
	}

	cfg.DataDir = strings.TrimSpace(input.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}

	cfg.SourceDBConnect = input.SourceDBConnect
	if cfg.SourceBackend == schema.SQLiteSource && cfg.SourceDBConnect == "" {
		cfg.SourceDBConnect = GetSourceDBFilePath()
	}
	return ValidateDatabaseConnectionString(cfg.SourceBackend, cfg.SourceDBConnect)
}

// validateSimpleInputs processes and validates all non-source fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Ascending = input.Ascending
	cfg.Explain = input.Explain
	cfg.DimensionsFile = strings.TrimSpace(input.DimensionsFile)
	cfg.MetricsFile = strings.TrimSpace(input.MetricsFile)
	cfg.Countries = ParseList(input.Countries)

	cfg.Persona = normalizePersonaName(input.Persona)
	if cfg.Persona == "" {
		cfg.Persona = schema.DefaultPersona
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision, Width and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 4. Log Level Validation ---
	levelStr := input.LogLevel
	if levelStr == "" {
		levelStr = DefaultLogLevel
	}
	level, err := ParseLogLevel(levelStr)
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	return nil
}

// ProcessPersonasRawInput converts raw persona weights into the final weights map.
// Built-in personas start from their defaults and take only the named fields;
// other personas take exactly the named fields. If validateSum is true, every
// resulting persona must sum to 1.0.
func ProcessPersonasRawInput(raw map[string]*DimensionWeightsRaw, validateSum bool) (map[string]map[schema.Dimension]float64, error) {
	result := make(map[string]map[schema.Dimension]float64, len(raw))

	for _, rawName := range slices.Sorted(maps.Keys(raw)) {
		rawWeights := raw[rawName]
		if rawWeights == nil {
			continue
		}
		name := normalizePersonaName(rawName)
		if name == "" {
			return nil, fmt.Errorf("persona name cannot be empty")
		}

		weights := schema.GetDefaultWeights(name)
		if weights == nil {
			weights = make(map[schema.Dimension]float64)
		}

		named := 0
		for dim, w := range rawWeights.fields() {
			if w == nil {
				continue
			}
			if math.IsNaN(*w) || math.IsInf(*w, 0) {
				return nil, fmt.Errorf("weight for %s in persona %s must be a finite number (received %v)", dim, name, *w)
			}
			if *w < 0 {
				return nil, fmt.Errorf("weight for %s in persona %s cannot be negative (received %.3f)", dim, name, *w)
			}
			weights[dim] = *w
			named++
		}
		// Skip personas with no weights at all
		if named == 0 {
			continue
		}

		if validateSum {
			sum := 0.0
			for _, w := range weights {
				sum += w
			}
			if sum < 1-weightSumTolerance || sum > 1+weightSumTolerance {
				return nil, fmt.Errorf("custom weights for persona %s must sum to 1.0, got %.3f", name, sum)
			}
		}
		result[name] = weights
	}

	return result, nil
}

// processCustomPersonas converts the raw input into cfg.CustomPersonas.
func processCustomPersonas(cfg *Config, input *ConfigRawInput) error {
	personas, err := ProcessPersonasRawInput(input.Personas, true)
	if err != nil {
		return err
	}
	if len(personas) > 0 {
		cfg.CustomPersonas = personas
	}
	return nil
}

// normalizePersonaName maps user spellings like "Policy-Maker" to "policy_maker".
func normalizePersonaName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if prefix := strings.TrimSpace(profilePrefix); prefix != "" {
		profile.Enabled = true
		profile.Prefix = prefix
	}
}
