package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train, select and publish models for every target",
	Long: `Cross-validates each target's candidate algorithms on the persisted
snapshots, selects the winner, re-fits it on the full dataset and publishes
it to the registry. Targets without enough samples are skipped and listed.`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	if modelTrainer == nil {
		return errors.New("trainer service not configured")
	}
	result, err := modelTrainer.TrainModels(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}
