package model

import "time"

// DispatchPlan is the decoded battery trajectory for one planning horizon.
// All per-slot vectors have the horizon length; SoC carries one extra entry
// with SoC[0] holding the initial state.
type DispatchPlan struct {
	BatteryKW    []float64     `json:"battery_kw"` // realized battery power per slot, positive charges
	SoC          []float64     `json:"soc"`        // state of charge trajectory, horizon+1 entries
	GridKW       []float64     `json:"grid_kw"`    // grid exchange per slot, positive imports
	Violations   []float64     `json:"violations"` // SoC bound excursions per slot in SoC fraction
	SlotDuration time.Duration `json:"slot_duration"`
}

// Horizon returns the number of slots in the plan.
func (p DispatchPlan) Horizon() int { return len(p.BatteryKW) }

// FirstActionKW returns the battery setpoint for the slot starting now.
func (p DispatchPlan) FirstActionKW() float64 {
	if len(p.BatteryKW) == 0 {
		return 0
	}
	return p.BatteryKW[0]
}

// ImportKWh sums the energy drawn from the grid over the horizon.
func (p DispatchPlan) ImportKWh() float64 {
	h := p.SlotDuration.Hours()
	var sum float64
	for _, g := range p.GridKW {
		if g > 0 {
			sum += g * h
		}
	}
	return sum
}

// ExportKWh sums the energy fed into the grid over the horizon.
func (p DispatchPlan) ExportKWh() float64 {
	h := p.SlotDuration.Hours()
	var sum float64
	for _, g := range p.GridKW {
		if g < 0 {
			sum += -g * h
		}
	}
	return sum
}

// TotalViolation sums the per-slot SoC excursions.
func (p DispatchPlan) TotalViolation() float64 {
	var sum float64
	for _, v := range p.Violations {
		sum += v
	}
	return sum
}

// Clone returns a deep copy of the plan.
func (p DispatchPlan) Clone() DispatchPlan {
	out := p
	out.BatteryKW = append([]float64(nil), p.BatteryKW...)
	out.SoC = append([]float64(nil), p.SoC...)
	out.GridKW = append([]float64(nil), p.GridKW...)
	out.Violations = append([]float64(nil), p.Violations...)
	return out
}

// RunResult captures the outcome of one optimization run. A new run replaces
// the previous result wholesale.
type RunResult struct {
	ID              string        `json:"id"`
	CreatedAt       time.Time     `json:"created_at"`
	Plan            DispatchPlan  `json:"plan"`
	Genotype        []float64     `json:"genotype"`
	BestFitness     float64       `json:"best_fitness"`
	BaselineFitness float64       `json:"baseline_fitness"`
	Generations     int           `json:"generations"` // generations actually executed
	Evaluations     int           `json:"evaluations"` // fitness evaluations performed
	Duration        time.Duration `json:"duration"`
	Feasible        bool          `json:"feasible"` // false when the best plan still violates SoC bounds
}

// Savings returns how much the optimized plan improves on the do-nothing
// baseline. Positive means the optimizer found a cheaper plan.
func (r RunResult) Savings() float64 {
	return r.BaselineFitness - r.BestFitness
}

// Clone returns a deep copy of the result.
func (r RunResult) Clone() RunResult {
	out := r
	out.Plan = r.Plan.Clone()
	out.Genotype = append([]float64(nil), r.Genotype...)
	return out
}
