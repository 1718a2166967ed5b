package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Summarise datasets and models with recommendations",
	Long: `Reports per-source snapshot freshness and record counts, per-model
metrics, and rule-based recommendations such as re-running collection for
stale or degraded sources.`,
	RunE: runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	if insightReporter == nil {
		return errors.New("insight service not configured")
	}
	report, err := insightReporter.Insights(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, report)
}
