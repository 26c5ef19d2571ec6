package cmd

import (
	"github.com/huangsam/viability/core"
	"github.com/huangsam/viability/internal/contract"
	"github.com/spf13/cobra"
)

// explainCmd breaks an index down into its dimensions and metrics.
var explainCmd = &cobra.Command{
	Use:   "explain <country> [country...]",
	Short: "Explain how the index of a country was built.",
	Long: `Break the viability index of one or more countries down into the
contribution of each dimension, and each dimension into its metrics.

Countries can be given by name, alias or ISO3 code.

Examples:
  # Explain India under the default persona
  viability explain India

  # Explain two countries for an NGO audience
  viability explain USA "South Africa" --persona ngo`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteExplain(rootCtx, cfg, dataSource, args); err != nil {
			contract.LogFatal("Cannot explain countries", err)
		}
	},
}
