package cmd

import (
	"github.com/huangsam/viability/core"
	"github.com/huangsam/viability/internal/contract"
	"github.com/spf13/cobra"
)

// dimensionsCmd shows the per-dimension scores.
var dimensionsCmd = &cobra.Command{
	Use:   "dimensions [name]",
	Short: "Show the score of every dimension, or the detail of one.",
	Long: `Show the 0-100 score each country gets on every dimension.

With a dimension name, show that dimension alone with the metric that
weighs most for each country.

Dimensions: infrastructure, necessity, resource, artificial_support,
ecological, economic, emissions.

Examples:
  # All dimensions side by side
  viability dimensions

  # Emissions detail for three countries
  viability dimensions emissions --countries "India,Germany,Australia"`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		if err := core.ExecuteDimensions(rootCtx, cfg, dataSource, name); err != nil {
			contract.LogFatal("Cannot show dimensions", err)
		}
	},
}
