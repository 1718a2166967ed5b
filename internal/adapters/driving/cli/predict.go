package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict <model> <feature>=<value> [<feature>=<value>...]",
	Short: "Evaluate a published model against a feature map",
	Long: `Validates the given features against the model's recorded feature
contract and returns a prediction. Every recorded feature must be present
and no extra keys are accepted.

Example:
  pulse predict epidemic_forecast cases=52000 deaths=1200 recovered=48000`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	if predictionService == nil {
		return errors.New("prediction service not configured")
	}

	features, err := parseFeatures(args[1:])
	if err != nil {
		return err
	}
	result, err := predictionService.Predict(cmd.Context(), args[0], features)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

// parseFeatures converts name=value arguments into a feature map.
func parseFeatures(pairs []string) (map[string]float64, error) {
	features := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid feature %q: expected <feature>=<value>", pair)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for feature %q: %q is not a number", name, raw)
		}
		features[name] = value
	}
	return features, nil
}
