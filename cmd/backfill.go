package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/FilipeDoria/genetic-load-manager/app"
	"github.com/FilipeDoria/genetic-load-manager/config"
	"github.com/FilipeDoria/genetic-load-manager/core/metrics/eco"
	"github.com/FilipeDoria/genetic-load-manager/core/runlog"
	"github.com/FilipeDoria/genetic-load-manager/infra/kpi"
	"github.com/FilipeDoria/genetic-load-manager/jobs/ecokpi"
)

var (
	backfillSince    string
	backfillFeasible bool
)

var backfillCmd = &cobra.Command{
	Use:   "backfill-kpi",
	Short: "Rebuild daily energy KPIs from the run log",
	RunE:  runBackfill,
}

func init() {
	backfillCmd.Flags().StringVar(&backfillSince, "since", "", "only process runs after this day (YYYY-MM-DD)")
	backfillCmd.Flags().BoolVar(&backfillFeasible, "feasible-only", false, "skip runs whose plan violated SoC bounds")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Metrics.KPIBackend != "sqlite" {
		return fmt.Errorf("backfill requires the sqlite kpi backend, got %q", cfg.Metrics.KPIBackend)
	}

	runs, err := app.NewRunLog(cfg.RunLog)
	if err != nil {
		return fmt.Errorf("run log: %w", err)
	}
	if runs == nil {
		return fmt.Errorf("run log backend %q keeps no history", cfg.RunLog.Backend)
	}
	defer func() { _ = runs.Close() }()

	kpis, err := kpi.NewSQLiteStore(cfg.Metrics.KPIPath)
	if err != nil {
		return fmt.Errorf("kpi store: %w", err)
	}
	defer func() { _ = kpis.Close() }()

	q := runlog.RunQuery{OnlyFeasible: backfillFeasible}
	if backfillSince != "" {
		since, err := time.Parse("2006-01-02", backfillSince)
		if err != nil {
			return fmt.Errorf("parse since: %w", err)
		}
		q.Start = eco.Day(since)
	}

	n, err := ecokpi.Backfill(cmd.Context(), runs, kpis, q)
	if err != nil {
		return fmt.Errorf("backfill after %d runs: %w", n, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backfilled %d runs into %s\n", n, cfg.Metrics.KPIPath)
	return nil
}
