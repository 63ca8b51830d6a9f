package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FilipeDoria/genetic-load-manager/app"
	"github.com/FilipeDoria/genetic-load-manager/config"
	"github.com/FilipeDoria/genetic-load-manager/core/genetic"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
	"github.com/FilipeDoria/genetic-load-manager/infra/mqtt"
	"github.com/FilipeDoria/genetic-load-manager/pkg/export"
)

var (
	optimizeOut    string
	optimizeFormat string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run a single optimization cycle and print the plan",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeOut, "out", "o", "-", "output file, - for stdout")
	optimizeCmd.Flags().StringVarP(&optimizeFormat, "format", "f", "json", "output format (json or csv)")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("optimize-command")
	slot := cfg.Genetic.SlotDuration()

	var client *mqtt.PahoClient
	if cfg.Provider.Source == config.SourceMQTT {
		client, err = mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("mqtt client: %w", err)
		}
		defer client.Disconnect()
	}
	provider, err := app.NewForecastProvider(cfg, client, slot)
	if err != nil {
		return err
	}

	snap, err := provider.Snapshot(ctx)
	if err != nil && cfg.Provider.Source == config.SourceMQTT {
		// Retained sensor readings need a moment to arrive after subscribing.
		snap, err = awaitSnapshot(ctx, provider.Snapshot)
	}
	if err != nil {
		return fmt.Errorf("forecast snapshot: %w", err)
	}

	opt, err := genetic.NewOptimizer(cfg.Genetic, logger.New("optimizer"))
	if err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	res, err := opt.Run(ctx, snap)
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	logg.Infof("best fitness %.4f, baseline %.4f, %d generations in %s",
		res.BestFitness, res.BaselineFitness, res.Generations, res.Duration.Round(time.Millisecond))
	if !res.Feasible {
		logg.Warnf("plan violates SoC bounds by %.4f", res.Plan.TotalViolation())
	}
	return writeResult(cmd, res)
}

func awaitSnapshot(ctx context.Context, fetch func(context.Context) (model.ForecastSnapshot, error)) (model.ForecastSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return model.ForecastSnapshot{}, fmt.Errorf("waiting for sensor data: %w", lastErr)
		case <-ticker.C:
			snap, err := fetch(ctx)
			if err == nil {
				return snap, nil
			}
			lastErr = err
		}
	}
}

func writeResult(cmd *cobra.Command, res model.RunResult) error {
	var w io.Writer = cmd.OutOrStdout()
	if optimizeOut != "" && optimizeOut != "-" {
		f, err := os.Create(optimizeOut)
		if err != nil {
			return err
		}
		if err := encodeResult(f, res); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return encodeResult(w, res)
}

func encodeResult(w io.Writer, res model.RunResult) error {
	switch optimizeFormat {
	case "json":
		return export.WriteJSON(w, res)
	case "csv":
		return export.WriteCSV(w, res)
	default:
		return fmt.Errorf("unknown output format %q", optimizeFormat)
	}
}
