package cmd

import (
	"github.com/huangsam/viability/core"
	"github.com/huangsam/viability/internal/contract"
	"github.com/spf13/cobra"
)

// personasCmd lists the personas and their weights.
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List personas and the weight they give each dimension.",
	Long: `List the built-in personas and any defined in .viability.yaml.

Custom personas are marked with an asterisk. No datasets are read.

Examples:
  # Show every persona
  viability personas

  # Export the weights
  viability personas --output csv --output-file personas.csv`,
	Args:    cobra.NoArgs,
	PreRunE: staticSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePersonas(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot list personas", err)
		}
	},
}
