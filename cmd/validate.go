package cmd

import (
	"github.com/huangsam/viability/core"
	"github.com/huangsam/viability/internal/contract"
	"github.com/spf13/cobra"
)

// validateCmd checks dataset quality and the resulting score table.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report data-quality issues and validate the score table.",
	Long: `Validate every dataset and the score table built from them.

Reports:
- Datasets dropped for being empty or unusable
- Columns with high missing rates or no variance
- Dimensions missing values or scoring outside [0, 100]
- Mean, spread and coverage per dimension

Exits with a non-zero status when the score table has issues,
which makes it usable as a CI gate on data updates.

Examples:
  viability validate
  viability validate --output json --output-file validation.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteValidate(rootCtx, cfg, dataSource); err != nil {
			contract.LogFatal("Validation failed", err)
		}
	},
}
