package cmd

import (
	"github.com/huangsam/viability/core"
	"github.com/spf13/cobra"
)

// watchCmd rescores whenever a dataset file changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rescore every time a dataset file changes",
	Long: `Score once, then watch --data-dir and rescore after each settled change.

Only the CSV source can be watched. Stop with Ctrl-C.

Examples:
  viability watch --data-dir data --limit 10
  viability watch --metrics-file /var/lib/node_exporter/viability.prom`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteWatch(rootCtx, cfg, dataSource)
	},
}
