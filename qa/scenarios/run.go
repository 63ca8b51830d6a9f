package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FilipeDoria/genetic-load-manager/core/forecast"
	"github.com/FilipeDoria/genetic-load-manager/core/genetic"
	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/FilipeDoria/genetic-load-manager/core/planstore"
	"github.com/FilipeDoria/genetic-load-manager/core/scheduler"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
	"github.com/FilipeDoria/genetic-load-manager/infra/metrics"
	"github.com/FilipeDoria/genetic-load-manager/infra/mqtt"
	"github.com/FilipeDoria/genetic-load-manager/internal/eventbus"
)

// RunScenario optimizes the scenario forecast through a full scheduler tick
// and checks the stored plan against the expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	cfg := genetic.Config{
		Horizon:        len(sc.SolarKW),
		SlotMinutes:    sc.SlotMinutes,
		PopulationSize: sc.Search.PopulationSize,
		Generations:    sc.Search.Generations,
		Workers:        sc.Search.Workers,
		Seed:           sc.Search.Seed,
	}
	cfg.SetDefaults()
	opt, err := genetic.NewOptimizer(cfg, logger.NopLogger{})
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}

	pub := mqtt.NewMockPublisher()
	bus := eventbus.New()
	store := planstore.NewMemoryStore(4)
	provider := forecast.NewStaticProvider(sc.Snapshot())

	sched, err := scheduler.NewScheduler(scheduler.Config{IntervalSeconds: 60},
		provider, opt, store, pub, nil, sink, bus, logger.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	sched.Tick(context.Background())

	res, ok := store.Latest()
	if !ok {
		t.Fatalf("scenario %s: no plan stored", sc.Name)
	}
	if res.Feasible != sc.Expected.Feasible {
		t.Errorf("scenario %s: feasible = %v, want %v", sc.Name, res.Feasible, sc.Expected.Feasible)
	}
	plan := res.Plan
	for _, slot := range sc.Expected.ChargeSlots {
		if slot < 0 || slot >= plan.Horizon() {
			t.Errorf("scenario %s: charge slot %d outside horizon %d", sc.Name, slot, plan.Horizon())
			continue
		}
		if plan.BatteryKW[slot] <= 0 {
			t.Errorf("scenario %s: slot %d should charge, battery %.3f kW", sc.Name, slot, plan.BatteryKW[slot])
		}
	}
	for _, slot := range sc.Expected.DischargeSlots {
		if slot < 0 || slot >= plan.Horizon() {
			t.Errorf("scenario %s: discharge slot %d outside horizon %d", sc.Name, slot, plan.Horizon())
			continue
		}
		if plan.BatteryKW[slot] >= 0 {
			t.Errorf("scenario %s: slot %d should discharge, battery %.3f kW", sc.Name, slot, plan.BatteryKW[slot])
		}
	}
	if sc.Expected.MinSavings > 0 && res.Savings() < sc.Expected.MinSavings {
		t.Errorf("scenario %s: savings %.4f below expected %.4f", sc.Name, res.Savings(), sc.Expected.MinSavings)
	}
	if len(pub.Plans) != 1 {
		t.Errorf("scenario %s: published %d plans, want 1", sc.Name, len(pub.Plans))
	}
}
