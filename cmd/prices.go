package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/FilipeDoria/genetic-load-manager/auth"
	"github.com/FilipeDoria/genetic-load-manager/config"
	wholesalemarket "github.com/FilipeDoria/genetic-load-manager/connectors/clients/wholesaleMarket"
	"github.com/FilipeDoria/genetic-load-manager/connectors/factory"
)

var (
	pricesDate  string
	pricesDays  int
	pricesChart string
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Fetch day-ahead market prices",
	Long: `Fetches wholesale day-ahead prices from the configured market
connector and prints them as EUR/kWh intervals, the unit the optimizer
works with. With --chart the raw prices are written as an HTML chart
instead.`,
	RunE: runPrices,
}

func init() {
	pricesCmd.Flags().StringVar(&pricesDate, "date", "", "first day to fetch (YYYY-MM-DD, default today)")
	pricesCmd.Flags().IntVar(&pricesDays, "days", 1, "number of days to fetch")
	pricesCmd.Flags().StringVar(&pricesChart, "chart", "", "write an HTML price chart to this file instead of JSON")
	rootCmd.AddCommand(pricesCmd)
}

func runPrices(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	start := time.Now().Truncate(24 * time.Hour)
	if pricesDate != "" {
		start, err = time.Parse("2006-01-02", pricesDate)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}
	if pricesDays < 1 {
		return fmt.Errorf("days must be at least 1")
	}
	end := start.AddDate(0, 0, pricesDays)

	client, err := factory.NewClient(cfg.Market.Connector)
	if err != nil {
		return fmt.Errorf("market connector: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	resp, err := client.Fetch(ctx, auth.NewClientCred(cfg.Market.Auth),
		wholesalemarket.WithStartDate(start),
		wholesalemarket.WithEndDate(end))
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}

	if pricesChart != "" {
		html, err := resp.PriceChartHTML()
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		if err := os.WriteFile(pricesChart, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "chart written to %s\n", pricesChart)
		return nil
	}

	points, err := resp.PricePoints()
	if err != nil {
		return fmt.Errorf("convert prices: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(points)
}
