// Package cli wires the adapters together and exposes the pipeline through
// cobra commands. Command handlers talk to the driving ports only; tests
// swap the package-level services for mocks.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/quantica-labs/pulse/internal/adapters/driven/config/file"
	"github.com/quantica-labs/pulse/internal/adapters/driven/registry"
	"github.com/quantica-labs/pulse/internal/adapters/driven/storage/csvstore"
	"github.com/quantica-labs/pulse/internal/adapters/driven/storage/modelstore"
	"github.com/quantica-labs/pulse/internal/adapters/driven/storage/sqlite"
	"github.com/quantica-labs/pulse/internal/connectors"
	"github.com/quantica-labs/pulse/internal/connectors/epidemic"
	"github.com/quantica-labs/pulse/internal/connectors/market"
	"github.com/quantica-labs/pulse/internal/connectors/weather"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/core/ports/driving"
	"github.com/quantica-labs/pulse/internal/core/services"
	"github.com/quantica-labs/pulse/internal/logger"
	"github.com/quantica-labs/pulse/internal/transform"
)

var version = "dev"

// Services used by command handlers. Populated by bootstrap, replaced by
// mocks in tests.
var (
	pipelineRunner    driving.PipelineRunner
	modelTrainer      driving.Trainer
	predictionService driving.PredictionService
	insightReporter   driving.InsightReporter
)

var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Multi-source metrics pipeline with model training and insights",
	Long: `pulse collects epidemiological, weather and market data, derives
feature datasets, trains and selects prediction models, and reports
insights and trends. All command output is JSON.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(flagVerbose)
		if cmd.Name() == "version" {
			return nil
		}
		if pipelineRunner != nil {
			// Already wired (tests inject their own services).
			return nil
		}
		return bootstrap(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.pulse)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.pulse/data)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap wires the production adapters into the services.
func bootstrap(ctx context.Context) error {
	cfg, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = cfg.GetString("storage.data_dir")
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pulse", "data")
	}

	snapshots, err := csvstore.New(filepath.Join(dataDir, "datasets"))
	if err != nil {
		return fmt.Errorf("opening dataset store: %w", err)
	}
	models, err := modelstore.New(filepath.Join(dataDir, "models"))
	if err != nil {
		return fmt.Errorf("opening model store: %w", err)
	}
	runs, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening run ledger: %w", err)
	}

	reg := registry.New()
	if err := reg.Hydrate(ctx, models); err != nil {
		return fmt.Errorf("hydrating registry: %w", err)
	}

	pipelineRunner = services.NewPipeline(buildConnectors(cfg), snapshots, runs, pipelineConfig(cfg))
	modelTrainer = services.NewTrainer(snapshots, models, reg, runs, services.DefaultTargets(), trainerConfig(cfg))
	predictionService = services.NewPredictionService(reg)
	insightReporter = services.NewInsightService(snapshots, reg, services.DefaultInsightConfig())
	return nil
}

// buildConnectors assembles the source connectors from configuration.
// Missing API keys are fine: key-gated connectors degrade to synthetic data.
func buildConnectors(cfg driven.ConfigStore) []driven.Connector {
	client := connectors.ClientConfig{
		Timeout:    durationSetting(cfg, "sources.timeout_seconds", 10*time.Second),
		MaxRetries: cfg.GetInt("sources.max_retries"),
	}
	return []driven.Connector{
		epidemic.New(epidemic.Config{
			Days:   cfg.GetInt("sources.epidemic.days"),
			Client: client,
		}),
		weather.New(weather.Config{
			City:   cfg.GetString("sources.weather.city"),
			APIKey: cfg.GetString("sources.weather.api_key"),
			Client: client,
		}),
		market.New(market.Config{
			Symbol: cfg.GetString("sources.market.symbol"),
			APIKey: cfg.GetString("sources.market.api_key"),
			Client: client,
		}),
	}
}

func pipelineConfig(cfg driven.ConfigStore) services.PipelineConfig {
	pc := services.DefaultPipelineConfig()
	if n := cfg.GetInt("pipeline.max_concurrent_fetches"); n > 0 {
		pc.MaxConcurrentFetches = n
	}
	pc.FetchTimeout = durationSetting(cfg, "pipeline.fetch_timeout_seconds", pc.FetchTimeout)
	pc.RunDeadline = durationSetting(cfg, "pipeline.run_deadline_seconds", pc.RunDeadline)
	pc.Transform = transformConfig(cfg)
	return pc
}

func transformConfig(cfg driven.ConfigStore) transform.Config {
	tc := transform.DefaultConfig()
	if w := cfg.GetInt("transform.moving_average_window"); w > 0 {
		tc.MovingAverageWindow = w
	}
	if band := cfg.GetFloat("transform.zscore_band"); band > 0 {
		tc.ZScoreBand = band
	}
	return tc
}

func trainerConfig(cfg driven.ConfigStore) services.TrainerConfig {
	tc := services.DefaultTrainerConfig()
	if n := cfg.GetInt("training.min_samples"); n > 0 {
		tc.MinSamples = n
	}
	if k := cfg.GetInt("training.folds"); k > 1 {
		tc.Folds = k
	}
	return tc
}

func durationSetting(cfg driven.ConfigStore, key string, fallback time.Duration) time.Duration {
	if secs := cfg.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// printJSON writes v to the command's stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
