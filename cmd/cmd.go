// Package cmd defines the command-line interface for viability.
package cmd

import (
	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(dimensionsCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the source subcommands to the parent source command
	sourceCmd.AddCommand(sourceStatusCmd)
	sourceCmd.AddCommand(sourceMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("persona", schema.DefaultPersona, "Persona weighting the dimensions: investor or policy_maker or ngo or analyst or citizen")
	rootCmd.PersistentFlags().StringP("countries", "c", "", "Comma-separated list of countries to score (default: every country in the data)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("ascending", false, "Rank the most viable countries first")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent dimension workers")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("source", string(schema.CSVSource), "Dataset source: csv or sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory holding <dimension>/*.csv datasets")
	rootCmd.PersistentFlags().String("source-db-connect", "", "Database connection string for sqlite/mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("dimensions-file", "", "YAML file overriding dimension metrics and fallbacks")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics to this textfile after each pass")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scoreCmd to Viper
	scoreCmd.Flags().Bool("explain", false, "Print the dimensions driving each index")
	if err := viper.BindPFlags(scoreCmd.Flags()); err != nil {
		contract.LogFatal("Error binding score flags", err)
	}

	// Bind all flags of sourceMigrateCmd to Viper
	sourceMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(sourceMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding source migrate flags", err)
	}
}
