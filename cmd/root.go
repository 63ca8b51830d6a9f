package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FilipeDoria/genetic-load-manager/app"
	"github.com/FilipeDoria/genetic-load-manager/config"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "genetic-load-manager",
	Short: "Home battery optimization service",
	Long: `genetic-load-manager plans battery charge and discharge over a rolling
horizon from PV, price and state of charge forecasts, and publishes the
resulting plan over MQTT.

Without a subcommand it starts the scheduler service.`,
	Example:      "  genetic-load-manager -c /etc/glm/config.yaml",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
