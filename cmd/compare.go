package cmd

import (
	"github.com/huangsam/viability/core"
	"github.com/huangsam/viability/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd shows the index of each country under several personas.
var compareCmd = &cobra.Command{
	Use:   "compare [persona...]",
	Short: "Compare the index of each country across personas.",
	Long: `Compute the viability index under several personas side by side.

The spread column shows how far apart the personas land for a country;
a wide spread means the verdict depends on who is asking.

Examples:
  # Compare all personas
  viability compare

  # Compare two personas for a few countries
  viability compare investor ngo --countries "India,Germany"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, dataSource, args); err != nil {
			contract.LogFatal("Cannot compare personas", err)
		}
	},
}
