package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var trendsDays int

var trendsCmd = &cobra.Command{
	Use:   "trends <source>",
	Short: "Report per-metric trend directions for one source",
	Long: `Fits a trend over the trailing window of one source's processed
dataset and reports direction, magnitude and summary statistics per metric.
The window is anchored at the newest persisted row.

Example:
  pulse trends weather --days 7`,
	Args: cobra.ExactArgs(1),
	RunE: runTrends,
}

func init() {
	trendsCmd.Flags().IntVar(&trendsDays, "days", 30, "lookback window in days")
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	if insightReporter == nil {
		return errors.New("insight service not configured")
	}
	report, err := insightReporter.Trends(cmd.Context(), args[0], trendsDays)
	if err != nil {
		return err
	}
	return printJSON(cmd, report)
}
