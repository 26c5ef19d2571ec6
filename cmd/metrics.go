package cmd

import (
	"github.com/huangsam/viability/core"
	"github.com/huangsam/viability/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the formal definitions of all dimensions and personas.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display formulas and definitions for all dimensions and personas",
	Long: `Show the formal definitions, formulas, and metric weights for every dimension.

Provides complete transparency into how countries are scored, including:
- Dimension purpose and the metrics behind it
- Metric weights, direction, scaling and caps
- Mathematical formula for each dimension and persona
- Overrides from --dimensions-file and personas from .viability.yaml

No datasets are read - this is purely informational.

Examples:
  # Show default definitions
  viability metrics

  # View with a dimension overrides file
  viability metrics --dimensions-file dimensions.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: staticSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
