// Package genetic evolves battery dispatch plans over a rolling horizon. A
// genotype holds one normalized charge or discharge setpoint per time slot;
// the optimizer searches for the genotype with the lowest combined grid cost
// and constraint penalty for a given forecast snapshot.
package genetic

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/FilipeDoria/genetic-load-manager/core/logger"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// Optimizer runs the evolutionary search. It owns its random source, so two
// optimizers built with the same configuration and seed produce identical
// runs. Run is not reentrant; callers serialize runs.
type Optimizer struct {
	mu       sync.Mutex
	cfg      Config
	rng      *rand.Rand
	log      logger.Logger
	prevBest Genotype
}

// NewOptimizer builds an optimizer from the configuration, seeding the random
// source from cfg.Seed or the clock when unset.
func NewOptimizer(cfg Config, log logger.Logger) (*Optimizer, error) {
	cfg.SetDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewOptimizerWithRand(cfg, rand.New(rand.NewSource(seed)), log)
}

// NewOptimizerWithRand builds an optimizer around an injected random source.
func NewOptimizerWithRand(cfg Config, rng *rand.Rand, log logger.Logger) (*Optimizer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("genetic: random source is required")
	}
	if log == nil {
		log = noplog{}
	}
	return &Optimizer{cfg: cfg, rng: rng, log: log}, nil
}

// Config returns a copy of the current configuration.
func (o *Optimizer) Config() Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg
}

// MutationRate returns the current per-gene mutation probability.
func (o *Optimizer) MutationRate() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg.MutationRate
}

// SetMutationRate adjusts the per-gene mutation probability, clamped to
// [0, 1]. The change applies from the next run.
func (o *Optimizer) SetMutationRate(r float64) {
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	o.mu.Lock()
	o.cfg.MutationRate = r
	o.mu.Unlock()
}

// Run searches for a low-cost plan for the given snapshot. On context
// cancellation the search stops at the next generation boundary and the
// best plan found so far is returned together with the context error.
func (o *Optimizer) Run(ctx context.Context, snap model.ForecastSnapshot) (model.RunResult, error) {
	start := time.Now()
	o.mu.Lock()
	cfg := o.cfg
	warm := o.prevBest
	o.mu.Unlock()

	ev, err := NewEvaluator(snap, cfg)
	if err != nil {
		return model.RunResult{}, err
	}

	pop := o.initialPopulation(ev, warm, cfg)
	fit := make([]float64, len(pop))
	o.evaluate(ev, pop, fit)
	evals := len(pop)

	bestIdx := argmin(fit)
	best := pop[bestIdx].Clone()
	bestFit := fit[bestIdx]

	gens := 0
	stale := 0
	var runErr error
	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			o.log.Warnf("optimization interrupted after %d generations: %v", gens, err)
			break
		}
		pop = o.nextGeneration(pop, fit, cfg)
		o.evaluate(ev, pop, fit)
		evals += len(pop)
		gens++
		generationsTotal.Inc()

		idx := argmin(fit)
		if improved := bestFit - fit[idx]; improved > 0 {
			best = pop[idx].Clone()
			bestFit = fit[idx]
			if improved <= cfg.EarlyStopEpsilon {
				stale++
			} else {
				stale = 0
			}
		} else {
			stale++
		}

		mean, sigma := populationStats(fit)
		o.log.Debugw("generation complete", map[string]any{
			"generation":   gen,
			"best_fitness": bestFit,
			"mean_fitness": mean,
			"std_fitness":  sigma,
		})

		if cfg.EarlyStopPatience > 0 && stale >= cfg.EarlyStopPatience {
			o.log.Debugf("stopping early after %d generations without improvement", stale)
			break
		}
	}

	plan := ev.Decode(best)
	res := model.RunResult{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now(),
		Plan:            plan,
		Genotype:        best,
		BestFitness:     bestFit,
		BaselineFitness: ev.Fitness(ZeroGenotype(cfg.Horizon)),
		Generations:     gens,
		Evaluations:     evals,
		Duration:        time.Since(start),
		Feasible:        plan.TotalViolation() <= cfg.FeasibilityEpsilon,
	}

	optimizationRuns.Inc()
	bestFitnessGauge.Set(bestFit)
	runDuration.Observe(res.Duration.Seconds())
	if !res.Feasible {
		infeasibleRuns.Inc()
		o.log.Warnf("best plan still violates SoC bounds by %.5f", plan.TotalViolation())
	}
	if runErr == nil {
		o.mu.Lock()
		o.prevBest = best.Clone()
		o.mu.Unlock()
	}
	o.log.Infow("optimization run complete", map[string]any{
		"run_id":           res.ID,
		"best_fitness":     res.BestFitness,
		"baseline_fitness": res.BaselineFitness,
		"generations":      res.Generations,
		"evaluations":      res.Evaluations,
		"duration_ms":      res.Duration.Milliseconds(),
		"feasible":         res.Feasible,
	})
	return res, runErr
}

// initialPopulation seeds the do-nothing anchor, the greedy heuristic, warm
// starts from the previous best and fills the rest with random genotypes.
func (o *Optimizer) initialPopulation(ev *Evaluator, warm Genotype, cfg Config) []Genotype {
	pop := make([]Genotype, 0, cfg.PopulationSize)
	pop = append(pop, ZeroGenotype(cfg.Horizon))
	if len(pop) < cfg.PopulationSize {
		pop = append(pop, GreedyGenotype(ev.Snapshot()))
	}
	if len(warm) == cfg.Horizon && cfg.WarmStartFraction > 0 {
		shifted := warm.ShiftLeft()
		n := int(cfg.WarmStartFraction * float64(cfg.PopulationSize))
		for i := 0; i < n && len(pop) < cfg.PopulationSize; i++ {
			seed := shifted.Clone()
			if i > 0 {
				// Jittered copies around the previous plan.
				mutate(seed, 0.5, cfg.MutationSigma, o.rng)
			}
			pop = append(pop, seed)
		}
	}
	for len(pop) < cfg.PopulationSize {
		pop = append(pop, NewRandomGenotype(cfg.Horizon, o.rng))
	}
	return pop
}

// nextGeneration carries the elite over unchanged and breeds the remainder
// with tournament selection, crossover and mutation.
func (o *Optimizer) nextGeneration(pop []Genotype, fit []float64, cfg Config) []Genotype {
	next := make([]Genotype, 0, len(pop))
	for _, idx := range eliteIndices(fit, cfg.EliteCount) {
		next = append(next, pop[idx].Clone())
	}
	for len(next) < len(pop) {
		p1 := pop[tournament(fit, cfg.TournamentSize, o.rng)]
		child := p1.Clone()
		if o.rng.Float64() < cfg.CrossoverRate {
			p2 := pop[tournament(fit, cfg.TournamentSize, o.rng)]
			child = crossover(p1, p2, cfg.CrossoverPoints, o.rng)
		}
		mutate(child, cfg.MutationRate, cfg.MutationSigma, o.rng)
		next = append(next, child)
	}
	return next
}

// evaluate scores the population in parallel. Results land at fixed indices,
// so worker scheduling never affects the outcome.
func (o *Optimizer) evaluate(ev *Evaluator, pop []Genotype, fit []float64) {
	workers := o.workerCount(len(pop))
	if workers <= 1 {
		for i, g := range pop {
			fit[i] = o.safeFitness(ev, g)
		}
		fitnessEvaluations.Add(float64(len(pop)))
		return
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fit[i] = o.safeFitness(ev, pop[i])
			}
		}()
	}
	for i := range pop {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	fitnessEvaluations.Add(float64(len(pop)))
}

func (o *Optimizer) workerCount(jobs int) int {
	workers := o.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > jobs {
		workers = jobs
	}
	return workers
}

// safeFitness recovers a panicking evaluation into the worst possible score
// so one bad genotype cannot abort the run.
func (o *Optimizer) safeFitness(ev *Evaluator, g Genotype) (f float64) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Errorf("fitness evaluation panic: %v", r)
			f = math.Inf(1)
		}
	}()
	f = ev.Fitness(g)
	if math.IsNaN(f) {
		f = math.Inf(1)
	}
	return f
}

func argmin(fit []float64) int {
	best := 0
	for i := 1; i < len(fit); i++ {
		if fit[i] < fit[best] {
			best = i
		}
	}
	return best
}

// eliteIndices returns the indices of the n lowest-fitness genotypes.
func eliteIndices(fit []float64, n int) []int {
	if n <= 0 {
		return nil
	}
	idx := make([]int, len(fit))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return fit[idx[a]] < fit[idx[b]] })
	if n > len(idx) {
		n = len(idx)
	}
	return idx[:n]
}

// populationStats summarizes finite fitness values for convergence logging.
func populationStats(fit []float64) (mean, sigma float64) {
	finite := make([]float64, 0, len(fit))
	for _, f := range fit {
		if !math.IsInf(f, 0) && !math.IsNaN(f) {
			finite = append(finite, f)
		}
	}
	if len(finite) == 0 {
		return math.Inf(1), 0
	}
	mean = stat.Mean(finite, nil)
	if len(finite) > 1 {
		sigma = stat.StdDev(finite, nil)
	}
	return mean, sigma
}

type noplog struct{}

func (noplog) Debugf(string, ...any)         {}
func (noplog) Debugw(string, map[string]any) {}
func (noplog) Infof(string, ...any)          {}
func (noplog) Infow(string, map[string]any)  {}
func (noplog) Warnf(string, ...any)          {}
func (noplog) Errorf(string, ...any)         {}
