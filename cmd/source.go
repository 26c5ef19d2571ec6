package cmd

import (
	"github.com/huangsam/viability/core"
	"github.com/huangsam/viability/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sourceCmd focused on dataset source management.
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Inspect and prepare the dataset source",
	Long: `Inspect and prepare the source datasets are read from.

Supported sources: CSV directory (default), SQLite, MySQL, PostgreSQL

SQL sources list their datasets in the viability_catalog table, or name
tables <dimension>__<dataset> when no catalog exists.

Subcommands:
  status  - List the datasets found per dimension
  migrate - Create or upgrade the catalog table

Examples:
  # List CSV datasets
  viability source status --data-dir data

  # Prepare a PostgreSQL source
  VIABILITY_SOURCE=postgresql VIABILITY_SOURCE_DB_CONNECT="host=localhost dbname=viability" viability source migrate`,
}

// sourceStatusCmd lists the datasets of the configured source.
var sourceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List the datasets found per dimension",
	Long: `Show which datasets the configured source exposes for each dimension.

No rows are read, so this is a quick way to check a source before scoring.

Examples:
  viability source status
  viability source status --source sqlite --source-db-connect ./viability.db`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSourceStatus(rootCtx, cfg, dataSource); err != nil {
			contract.LogFatal("Failed to get source status", err)
		}
	},
}

// sourceMigrateCmd applies the catalog migrations.
var sourceMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run catalog schema migrations (upgrades/downgrades)",
	Long: `Manage the schema version of the viability_catalog table in a SQL source.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  viability source migrate --source sqlite

  # Rollback to initial state
  viability source migrate --source sqlite --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: staticSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := core.ExecuteSourceMigrate(rootCtx, cfg, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
