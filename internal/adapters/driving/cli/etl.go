package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Collect from all sources, transform and persist snapshots",
	Long: `Fetches from every configured source, normalizes and engineers
features, and atomically replaces each source's dataset snapshot. Sources
that fail or fall back to synthetic data are reported as degraded; only a
persistence failure fails the run.`,
	RunE: runETL,
}

func init() {
	rootCmd.AddCommand(etlCmd)
}

func runETL(cmd *cobra.Command, args []string) error {
	if pipelineRunner == nil {
		return errors.New("pipeline service not configured")
	}
	result, err := pipelineRunner.RunETL(cmd.Context())
	if result != nil {
		if perr := printJSON(cmd, result); perr != nil {
			return perr
		}
	}
	return err
}
