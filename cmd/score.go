package cmd

import (
	"github.com/huangsam/viability/core"
	"github.com/huangsam/viability/internal/contract"
	"github.com/spf13/cobra"
)

// scoreCmd ranks countries by their persona-weighted viability index.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Rank countries by their coal viability index.",
	Long: `Score every dimension for each country and combine them into a single index.

The index runs from 0 to 100, where a higher value means coal is less viable:
- Seven dimensions are scored from the datasets under --data-dir
- Dimensions without usable data fall back to built-in reference scores
- The persona decides how much each dimension weighs
- Countries missing a dimension get the batch median for it

Examples:
  # Rank every country with the default analyst persona
  viability score

  # Rank a few countries as an investor would
  viability score --persona investor --countries "India,China,Poland"

  # Show which dimensions drive each index
  viability score --explain --limit 10

  # Export scores and metric contributions to Parquet
  viability score --explain --output parquet --output-file scores.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScore(rootCtx, cfg, dataSource); err != nil {
			contract.LogFatal("Cannot run scoring", err)
		}
	},
}
