package genetic

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	optimizationRuns   prometheus.Counter
	infeasibleRuns     prometheus.Counter
	generationsTotal   prometheus.Counter
	fitnessEvaluations prometheus.Counter
	bestFitnessGauge   prometheus.Gauge
	runDuration        prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Gauge, prometheus.Histogram) {
	runs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "optimization_runs_total",
			Help: "Number of completed optimization runs",
		},
	)
	infeasible := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "optimization_infeasible_runs_total",
			Help: "Number of runs whose best plan still violates SoC bounds",
		},
	)
	gens := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "optimization_generations_total",
			Help: "Number of generations evolved across all runs",
		},
	)
	evals := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "optimization_fitness_evaluations_total",
			Help: "Number of fitness evaluations performed",
		},
	)
	best := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "optimization_best_fitness",
			Help: "Fitness of the best plan found by the latest run",
		},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "optimization_run_duration_seconds",
			Help:    "Wall-clock duration of optimization runs",
			Buckets: prometheus.DefBuckets,
		},
	)
	return runs, infeasible, gens, evals, best, dur
}

func init() {
	optimizationRuns, infeasibleRuns, generationsTotal, fitnessEvaluations, bestFitnessGauge, runDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers optimizer metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(optimizationRuns, infeasibleRuns, generationsTotal, fitnessEvaluations, bestFitnessGauge, runDuration)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	optimizationRuns, infeasibleRuns, generationsTotal, fitnessEvaluations, bestFitnessGauge, runDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
