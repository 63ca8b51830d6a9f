package genetic

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// arbitrageSnapshot has cheap midday solar and expensive shoulders: the
// optimal plan buffers solar energy and discharges around it.
func arbitrageSnapshot() model.ForecastSnapshot {
	return model.ForecastSnapshot{
		SolarForecastKW: []float64{0, 2, 2, 0},
		PricePerKWh:     []float64{0.3, 0.1, 0.1, 0.3},
		SoC:             0.5,
		Battery: model.BatterySpec{
			CapacityKWh:    4,
			MaxChargeKW:    1,
			MaxDischargeKW: 1,
			MaxSoC:         1,
		},
		SlotDuration: time.Hour,
		Timestamp:    time.Now(),
	}
}

func TestRunFindsArbitragePlan(t *testing.T) {
	o, err := NewOptimizer(testConfig(), nil)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	res, err := o.Run(context.Background(), arbitrageSnapshot())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Genotype[1] <= 0 || res.Genotype[2] <= 0 {
		t.Fatalf("expected charging through the cheap solar slots, got %v", res.Genotype)
	}
	if res.Genotype[0] >= 0 || res.Genotype[3] >= 0 {
		t.Fatalf("expected discharging through the expensive slots, got %v", res.Genotype)
	}
	if res.BestFitness >= res.BaselineFitness {
		t.Fatalf("optimized plan %v must beat the do-nothing baseline %v",
			res.BestFitness, res.BaselineFitness)
	}
	// Full-power arbitrage earns 0.3+0.1+0.1+0.3 in export revenue.
	if math.Abs(res.BestFitness-(-0.8)) > 1e-9 {
		t.Fatalf("best fitness = %v, want -0.8", res.BestFitness)
	}
	if !res.Feasible {
		t.Fatalf("arbitrage plan should be feasible")
	}
	if got := res.Plan.SoC[4]; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("end soc = %v, want 0.5", got)
	}
}

func TestRunSeedReproducible(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 7
	cfg.Workers = 2
	run := func() model.RunResult {
		o, err := NewOptimizer(cfg, nil)
		if err != nil {
			t.Fatalf("optimizer: %v", err)
		}
		res, err := o.Run(context.Background(), arbitrageSnapshot())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return res
	}
	a, b := run(), run()
	if a.BestFitness != b.BestFitness {
		t.Fatalf("fitness differs across identical seeds: %v != %v", a.BestFitness, b.BestFitness)
	}
	for i := range a.Genotype {
		if a.Genotype[i] != b.Genotype[i] {
			t.Fatalf("gene %d differs: %v != %v", i, a.Genotype[i], b.Genotype[i])
		}
	}
	if a.Evaluations != b.Evaluations || a.Generations != b.Generations {
		t.Fatalf("run accounting differs: %+v vs %+v", a, b)
	}
}

func TestRunParallelMatchesSerial(t *testing.T) {
	results := make([]model.RunResult, 0, 2)
	for _, workers := range []int{1, 4} {
		cfg := testConfig()
		cfg.Seed = 11
		cfg.Workers = workers
		o, err := NewOptimizer(cfg, nil)
		if err != nil {
			t.Fatalf("optimizer: %v", err)
		}
		res, err := o.Run(context.Background(), arbitrageSnapshot())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		results = append(results, res)
	}
	if results[0].BestFitness != results[1].BestFitness {
		t.Fatalf("parallel evaluation changed the outcome: %v != %v",
			results[0].BestFitness, results[1].BestFitness)
	}
	for i := range results[0].Genotype {
		if results[0].Genotype[i] != results[1].Genotype[i] {
			t.Fatalf("gene %d differs between serial and parallel", i)
		}
	}
}

func TestRunZeroGenerationsScoresInitialPopulation(t *testing.T) {
	cfg := testConfig()
	cfg.Generations = 0
	o, err := NewOptimizer(cfg, nil)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	res, err := o.Run(context.Background(), arbitrageSnapshot())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Generations != 0 {
		t.Fatalf("generations = %d, want 0", res.Generations)
	}
	if res.Evaluations != cfg.PopulationSize {
		t.Fatalf("evaluations = %d, want %d", res.Evaluations, cfg.PopulationSize)
	}
	if res.BestFitness > res.BaselineFitness {
		t.Fatalf("initial population already contains the do-nothing plan")
	}
}

func TestRunCancelledContextReturnsBestSoFar(t *testing.T) {
	o, err := NewOptimizer(testConfig(), nil)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := o.Run(ctx, arbitrageSnapshot())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Generations != 0 {
		t.Fatalf("generations = %d, want 0 after immediate cancel", res.Generations)
	}
	if res.Plan.Horizon() != 4 {
		t.Fatalf("expected a best-so-far plan, got horizon %d", res.Plan.Horizon())
	}
}

func TestRunMoreGenerationsNeverWorse(t *testing.T) {
	best := make([]float64, 0, 2)
	for _, gens := range []int{3, 40} {
		cfg := testConfig()
		cfg.Seed = 13
		cfg.Generations = gens
		o, err := NewOptimizer(cfg, nil)
		if err != nil {
			t.Fatalf("optimizer: %v", err)
		}
		res, err := o.Run(context.Background(), arbitrageSnapshot())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		best = append(best, res.BestFitness)
	}
	if best[1] > best[0]+1e-12 {
		t.Fatalf("more generations regressed the best plan: %v -> %v", best[0], best[1])
	}
}

func TestRunEarlyStop(t *testing.T) {
	cfg := testConfig()
	cfg.Generations = 50
	cfg.EarlyStopPatience = 2
	o, err := NewOptimizer(cfg, nil)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	// The initial population already contains the optimum, so no generation
	// can improve on it and patience runs out immediately.
	res, err := o.Run(context.Background(), arbitrageSnapshot())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Generations != 2 {
		t.Fatalf("generations = %d, want 2", res.Generations)
	}
}

func TestInitialPopulationSeedsWarmStart(t *testing.T) {
	cfg := testConfig()
	o, err := NewOptimizerWithRand(cfg, newTestRand(3), nil)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	prev := Genotype{-1, 1, 1, -1}
	ev, err := NewEvaluator(arbitrageSnapshot(), cfg)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	pop := o.initialPopulation(ev, prev, cfg)
	if len(pop) != cfg.PopulationSize {
		t.Fatalf("population size = %d, want %d", len(pop), cfg.PopulationSize)
	}
	// Slot 0 holds the do-nothing anchor, slot 1 the greedy heuristic and
	// slot 2 the unjittered shifted previous best.
	want := prev.ShiftLeft()
	for i, g := range pop[2] {
		if g != want[i] {
			t.Fatalf("warm seed gene %d = %v, want %v", i, g, want[i])
		}
	}
	for _, g := range pop[0] {
		if g != 0 {
			t.Fatalf("anchor must hold, got %v", pop[0])
		}
	}
}

func TestRunWarmStartAcrossRuns(t *testing.T) {
	o, err := NewOptimizer(testConfig(), nil)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	first, err := o.Run(context.Background(), arbitrageSnapshot())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := o.Run(context.Background(), arbitrageSnapshot())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.BestFitness > first.BestFitness+1e-12 {
		t.Fatalf("warm started run regressed: %v -> %v", first.BestFitness, second.BestFitness)
	}
}

func TestRunInvalidSnapshotFails(t *testing.T) {
	o, err := NewOptimizer(testConfig(), nil)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	snap := arbitrageSnapshot()
	snap.SolarForecastKW = snap.SolarForecastKW[:3]
	res, err := o.Run(context.Background(), snap)
	if !errors.Is(err, model.ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
	if res.ID != "" {
		t.Fatalf("expected empty result on invalid input")
	}
}

func TestRunInfeasibleFlagged(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	// A tiny battery, extreme prices and a weightless penalty make the
	// violating greedy seed cheaper than the do-nothing anchor. With a
	// population of exactly those two seeds and no evolution, the best plan
	// is the violating one.
	snap := model.ForecastSnapshot{
		SolarForecastKW: []float64{0, 0},
		PricePerKWh:     []float64{10, -10},
		SoC:             0.5,
		Battery: model.BatterySpec{
			CapacityKWh:    0.1,
			MaxChargeKW:    10,
			MaxDischargeKW: 10,
			MaxSoC:         1,
		},
		SlotDuration: time.Hour,
		Timestamp:    time.Now(),
	}
	cfg := testConfig()
	cfg.Horizon = 2
	cfg.PopulationSize = 2
	cfg.TournamentSize = 2
	cfg.Generations = 0
	cfg.PenaltyWeight = 0.001
	o, err := NewOptimizer(cfg, nil)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	res, err := o.Run(context.Background(), snap)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Feasible {
		t.Fatalf("expected an infeasible best plan, got %+v", res.Plan)
	}
	if res.BestFitness >= 0 {
		t.Fatalf("violating plan should still be profitable, got %v", res.BestFitness)
	}
	if got := testutil.ToFloat64(infeasibleRuns); got != 1 {
		t.Fatalf("infeasibleRuns = %v, want 1", got)
	}
}

func TestRunRecordsMetrics(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)

	o, err := NewOptimizer(testConfig(), nil)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	res, err := o.Run(context.Background(), arbitrageSnapshot())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := testutil.ToFloat64(optimizationRuns); got != 1 {
		t.Fatalf("optimizationRuns = %v, want 1", got)
	}
	if got := testutil.ToFloat64(generationsTotal); got != float64(res.Generations) {
		t.Fatalf("generationsTotal = %v, want %d", got, res.Generations)
	}
	if got := testutil.ToFloat64(fitnessEvaluations); got != float64(res.Evaluations) {
		t.Fatalf("fitnessEvaluations = %v, want %d", got, res.Evaluations)
	}
	if count := testutil.CollectAndCount(runDuration); count == 0 {
		t.Fatalf("runDuration not observed")
	}
}

func TestNewOptimizerRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.PopulationSize = 1
	if _, err := NewOptimizer(cfg, nil); err == nil {
		t.Fatalf("expected error for population of one")
	}
	cfg = testConfig()
	cfg.MutationRate = 1.5
	if _, err := NewOptimizer(cfg, nil); err == nil {
		t.Fatalf("expected error for mutation rate above one")
	}
	if _, err := NewOptimizerWithRand(testConfig(), nil, nil); err == nil {
		t.Fatalf("expected error for nil random source")
	}
}
