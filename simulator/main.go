// Command simulator emulates a household with PV, a base load and a home
// battery. It publishes forecast vectors and the battery state of charge on
// the sensor topics the optimizer reads, and applies the setpoints the
// optimizer publishes back.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/FilipeDoria/genetic-load-manager/infra/metrics"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	applyBatteryProfile(&cfg)
	(&cfg).defaultTopics()
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var strat SetpointStrategy = InstantApply{}
	if cfg.ApplyLatency > 0 || cfg.DropRate > 0 {
		strat = LossyApply{Delay: cfg.ApplyLatency, DropRate: cfg.DropRate}
	}

	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if cfg.InfluxURL != "" {
		sink = metrics.NewInfluxSinkWithFallback(coremetrics.Config{
			InfluxEnabled: true,
			InfluxURL:     cfg.InfluxURL,
			InfluxToken:   cfg.InfluxToken,
			InfluxOrg:     cfg.InfluxOrg,
			InfluxBucket:  cfg.InfluxBucket,
		})
	}

	var prof [24]float64
	if cfg.ProfileFile != "" {
		var err error
		prof, err = readProfileFile(cfg.ProfileFile)
		if err != nil {
			log.Fatalf("profile file: %v", err)
		}
	} else {
		for i := range prof {
			prof[i] = 1
		}
	}

	house := NewHouse(cfg, prof, cfg.Seed)
	battery := NewSimBattery(cfg.CapacityKWh, cfg.ChargeRateKW, cfg.DischargeRateKW, cfg.InitialSoC)
	sim := NewHouseholdSim(cfg, house, battery, strat, sink)
	if err := sim.Run(ctx); err != nil {
		log.Fatalf("simulator: %v", err)
	}
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.StringVar(&cfg.TopicPrefix, "topic-prefix", "home/energy", "MQTT topic prefix")
	flag.IntVar(&cfg.Horizon, "horizon", 24, "forecast slots per message")
	flag.IntVar(&cfg.SlotMinutes, "slot-minutes", 60, "slot length in minutes")
	flag.DurationVar(&cfg.Interval, "interval", 30*time.Second, "sensor publish interval")
	flag.Float64Var(&cfg.InitialSoC, "soc", 0.5, "initial state of charge [0,1]")
	flag.Float64Var(&cfg.CapacityKWh, "capacity", 10, "battery capacity kWh")
	flag.Float64Var(&cfg.ChargeRateKW, "charge-rate", 3.6, "charge rate kW")
	flag.Float64Var(&cfg.DischargeRateKW, "discharge-rate", 3.6, "discharge rate kW")
	flag.StringVar(&cfg.BatteryProfile, "battery-profile", "", "predefined battery profile (small,medium,large)")
	flag.Float64Var(&cfg.PeakSolarKW, "peak-solar", 4, "peak PV production kW")
	flag.Float64Var(&cfg.BaseLoadKW, "base-load", 0.8, "base household load kW")
	flag.Float64Var(&cfg.DayPrice, "day-price", 0.25, "day import price per kWh")
	flag.Float64Var(&cfg.NightPrice, "night-price", 0.10, "night import price per kWh")
	flag.DurationVar(&cfg.ApplyLatency, "apply-latency", 0, "setpoint apply latency")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "setpoint drop probability")
	flag.Int64Var(&cfg.Seed, "seed", 0, "load jitter seed (0 = time based)")
	flag.StringVar(&cfg.ProfileFile, "profile-file", "", "hourly solar profile JSON")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.StringVar(&cfg.InfluxURL, "influx-url", "", "InfluxDB URL")
	flag.StringVar(&cfg.InfluxToken, "influx-token", "", "InfluxDB token")
	flag.StringVar(&cfg.InfluxOrg, "influx-org", "", "InfluxDB organization")
	flag.StringVar(&cfg.InfluxBucket, "influx-bucket", "", "InfluxDB bucket")
	flag.Parse()
	return cfg
}

func readProfileFile(path string) ([24]float64, error) {
	var prof [24]float64
	data, err := os.ReadFile(path)
	if err != nil {
		return prof, err
	}
	return LoadDayProfile(data)
}

func applyBatteryProfile(cfg *Config) {
	switch cfg.BatteryProfile {
	case "small":
		cfg.CapacityKWh = 5
		cfg.ChargeRateKW = 2.5
		cfg.DischargeRateKW = 2.5
	case "medium":
		cfg.CapacityKWh = 10
		cfg.ChargeRateKW = 3.6
		cfg.DischargeRateKW = 3.6
	case "large":
		cfg.CapacityKWh = 15
		cfg.ChargeRateKW = 5
		cfg.DischargeRateKW = 5
	case "":
	default:
		log.Printf("unknown battery profile %s", cfg.BatteryProfile)
	}
}
