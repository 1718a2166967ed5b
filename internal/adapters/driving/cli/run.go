package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: collect, persist, then train",
	Long: `Executes an ETL run and, if it succeeds, a training run over the
fresh snapshots. Equivalent to "pulse etl" followed by "pulse train".`,
	RunE: runFull,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runFull(cmd *cobra.Command, args []string) error {
	if pipelineRunner == nil || modelTrainer == nil {
		return errors.New("pipeline services not configured")
	}

	etlResult, err := pipelineRunner.RunETL(cmd.Context())
	if etlResult != nil {
		if perr := printJSON(cmd, etlResult); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}

	trainResult, err := modelTrainer.TrainModels(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, trainResult)
}
