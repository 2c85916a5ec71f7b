package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-intelligence/internal/app"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/readiness"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/registry"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/shutdown"
)

var (
	storeKind string
	modelKey  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "readinessctl",
		Short: "Train and inspect the readiness model",
		Long: `readinessctl trains the readiness regressor, stores it in the model
registry and runs predictions against the configured database.
Connection settings are read from the same environment as the server.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "Model store: db or file (defaults to MODEL_STORE)")
	rootCmd.PersistentFlags().StringVar(&modelKey, "key", registry.ReadinessKey, "Model registry key")

	rootCmd.AddCommand(newTrainCommand())
	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newPredictCommand())

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func buildApp() (*app.App, error) {
	cfg := app.LoadConfig()
	if storeKind != "" {
		cfg.ModelStore = storeKind
	}
	if modelKey != "" {
		cfg.ModelKey = modelKey
	}
	// CLI runs never consume events.
	cfg.NATSURL = ""
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.Build(cfg, log, nil)
}

func newTrainCommand() *cobra.Command {
	var (
		samples int
		seed    uint64
		epochs  int
		rate    float64
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit the readiness model on synthetic learners and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if samples <= 0 {
				return fmt.Errorf("--samples must be positive")
			}
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			data := registry.SyntheticSamples(samples, seed)
			start := time.Now()
			model, report, err := registry.Train(data, registry.TrainOptions{Epochs: epochs, LearningRate: rate})
			if err != nil {
				return err
			}
			art, err := a.Services.Registry.Save(cmd.Context(), modelKey, model, registry.Metadata{
				Type:            registry.ModelTypeLinear,
				Task:            "readiness",
				FeatureNames:    registry.ReadinessFeatures,
				TrainingSamples: report.Samples,
				RMSE:            report.RMSE,
			})
			if err != nil {
				return err
			}

			fmt.Printf("%s %s v%d (%s store)\n",
				color.New(color.FgGreen, color.Bold).Sprint("saved"),
				art.Key, art.Version, a.Services.Registry.Kind())
			fmt.Printf("  samples: %d  epochs: %d  rmse: %s  took: %s\n",
				report.Samples, report.Epochs,
				rmseColor(report.RMSE).Sprintf("%.4f", report.RMSE),
				time.Since(start).Round(time.Millisecond))
			for i, name := range registry.ReadinessFeatures {
				fmt.Printf("  %-22s %+.4f\n", name, model.Weights[i])
			}
			fmt.Printf("  %-22s %+.4f\n", "bias", model.Bias)
			return nil
		},
	}
	defaults := registry.DefaultTrainOptions()
	cmd.Flags().IntVar(&samples, "samples", 1000, "Number of synthetic learners")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed for the synthetic set")
	cmd.Flags().IntVar(&epochs, "epochs", defaults.Epochs, "Gradient descent epochs")
	cmd.Flags().Float64Var(&rate, "lr", defaults.LearningRate, "Learning rate")
	return cmd
}

func rmseColor(rmse float64) *color.Color {
	switch {
	case rmse < 0.1:
		return color.New(color.FgGreen)
	case rmse < 0.2:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the stored model",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.Services.Registry.Load(cmd.Context(), modelKey); err != nil {
				return err
			}
			info := a.Services.Registry.Info(modelKey)
			if !info.Loaded {
				color.New(color.FgYellow).Printf("no model stored under %q, predictions use the fallback\n", info.Key)
			}
			return printJSON(info)
		},
	}
}

func newPredictCommand() *cobra.Command {
	var learnerID, target string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict readiness for a learner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if learnerID == "" {
				return fmt.Errorf("--learner is required")
			}
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Services.Readiness.Predict(cmd.Context(), readiness.Request{
				LearnerID:     learnerID,
				TargetContext: target,
			})
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&learnerID, "learner", "", "Learner id")
	cmd.Flags().StringVar(&target, "target", "", "Target context")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
