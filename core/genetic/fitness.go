package genetic

import (
	"fmt"
	"math"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// Evaluator scores genotypes against one forecast snapshot. Fitness is a
// cost: lower is better. Evaluations are deterministic, the same genotype
// and snapshot always produce the same value.
type Evaluator struct {
	snap model.ForecastSnapshot
	cfg  Config
}

// NewEvaluator validates the snapshot against the configured horizon and
// returns an evaluator bound to it.
func NewEvaluator(snap model.ForecastSnapshot, cfg Config) (*Evaluator, error) {
	if err := snap.Validate(cfg.Horizon); err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}
	snap.Battery = snap.Battery.Normalized()
	return &Evaluator{snap: snap, cfg: cfg}, nil
}

// Decode expands the genotype against the evaluator's snapshot.
func (e *Evaluator) Decode(g Genotype) model.DispatchPlan {
	return Decode(g, e.snap)
}

// Fitness combines grid cost, the SoC bound penalty, the optional smoothness
// term and battery wear into one scalar.
func (e *Evaluator) Fitness(g Genotype) float64 {
	plan := Decode(g, e.snap)
	dt := e.snap.SlotDuration.Hours()

	var cost float64
	for i, grid := range plan.GridKW {
		price := e.snap.PricePerKWh[i]
		if grid > 0 {
			cost += grid * dt * price
		} else {
			cost += grid * dt * price * e.cfg.ExportPriceFactor
		}
	}

	cost += e.cfg.PenaltyWeight * plan.TotalViolation()

	if e.cfg.SmoothnessWeight > 0 {
		var rough float64
		for i := 1; i < len(g); i++ {
			d := g[i] - g[i-1]
			rough += d * d
		}
		cost += e.cfg.SmoothnessWeight * rough
	}

	if wear := e.snap.Battery.DegradationCostPerKWh; wear > 0 {
		for _, p := range plan.BatteryKW {
			cost += math.Abs(p) * dt * wear
		}
	}
	return cost
}

// Snapshot returns the validated snapshot the evaluator is bound to.
func (e *Evaluator) Snapshot() model.ForecastSnapshot { return e.snap }
