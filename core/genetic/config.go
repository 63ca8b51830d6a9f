package genetic

import (
	"fmt"
	"time"
)

// Config defines the search parameters for the plan optimizer.
type Config struct {
	Horizon            int     `json:"horizon"`      // number of slots per plan
	SlotMinutes        int     `json:"slot_minutes"` // slot length used by providers that build snapshots
	PopulationSize     int     `json:"population_size"`
	Generations        int     `json:"generations"`
	CrossoverRate      float64 `json:"crossover_rate"`
	CrossoverPoints    int     `json:"crossover_points"` // 1 or 2 cut points
	MutationRate       float64 `json:"mutation_rate"`    // per-gene probability
	MutationSigma      float64 `json:"mutation_sigma"`   // stddev of the gene perturbation
	TournamentSize     int     `json:"tournament_size"`
	EliteCount         int     `json:"elite_count"`
	Workers            int     `json:"workers"` // parallel fitness workers, 0 uses all CPUs
	PenaltyWeight      float64 `json:"penalty_weight"`
	SmoothnessWeight   float64 `json:"smoothness_weight"`
	ExportPriceFactor  float64 `json:"export_price_factor"` // export revenue relative to the import price
	EarlyStopEpsilon   float64 `json:"early_stop_epsilon"`
	EarlyStopPatience  int     `json:"early_stop_patience"` // generations without improvement before stopping, 0 disables
	WarmStartFraction  float64 `json:"warm_start_fraction"` // share of the population seeded from the previous best
	FeasibilityEpsilon float64 `json:"feasibility_epsilon"` // max total violation for a run to count as feasible
	Seed               int64   `json:"seed"`                // 0 seeds from the clock
}

// SetDefaults fills unset fields with working values.
func (c *Config) SetDefaults() {
	if c.Horizon == 0 {
		c.Horizon = 48
	}
	if c.SlotMinutes == 0 {
		c.SlotMinutes = 15
	}
	if c.PopulationSize == 0 {
		c.PopulationSize = 64
	}
	// Generations keeps its configured value: zero generations is a valid
	// request that scores only the initial population.
	if c.CrossoverRate == 0 {
		c.CrossoverRate = 0.85
	}
	if c.CrossoverPoints == 0 {
		c.CrossoverPoints = 1
	}
	if c.MutationRate == 0 {
		c.MutationRate = 0.08
	}
	if c.MutationSigma == 0 {
		c.MutationSigma = 0.25
	}
	if c.TournamentSize == 0 {
		c.TournamentSize = 3
	}
	if c.EliteCount == 0 {
		c.EliteCount = 1
	}
	if c.PenaltyWeight == 0 {
		c.PenaltyWeight = 1000
	}
	if c.ExportPriceFactor == 0 {
		c.ExportPriceFactor = 1
	}
	if c.WarmStartFraction == 0 {
		c.WarmStartFraction = 0.25
	}
	if c.FeasibilityEpsilon == 0 {
		c.FeasibilityEpsilon = 1e-9
	}
}

// Validate rejects configurations the optimizer cannot run with. Invalid
// values are never clamped; construction fails instead.
func (c Config) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("genetic: horizon must be positive, got %d", c.Horizon)
	}
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("genetic: slot_minutes must be positive, got %d", c.SlotMinutes)
	}
	if c.PopulationSize < 2 {
		return fmt.Errorf("genetic: population_size must be at least 2, got %d", c.PopulationSize)
	}
	if c.Generations < 0 {
		return fmt.Errorf("genetic: generations must not be negative, got %d", c.Generations)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("genetic: crossover_rate %v outside [0, 1]", c.CrossoverRate)
	}
	if c.CrossoverPoints != 1 && c.CrossoverPoints != 2 {
		return fmt.Errorf("genetic: crossover_points must be 1 or 2, got %d", c.CrossoverPoints)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("genetic: mutation_rate %v outside [0, 1]", c.MutationRate)
	}
	if c.MutationSigma <= 0 {
		return fmt.Errorf("genetic: mutation_sigma must be positive, got %v", c.MutationSigma)
	}
	if c.TournamentSize < 1 || c.TournamentSize > c.PopulationSize {
		return fmt.Errorf("genetic: tournament_size %d outside [1, %d]", c.TournamentSize, c.PopulationSize)
	}
	if c.EliteCount < 0 || c.EliteCount >= c.PopulationSize {
		return fmt.Errorf("genetic: elite_count %d must be below population_size %d", c.EliteCount, c.PopulationSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("genetic: workers must not be negative, got %d", c.Workers)
	}
	if c.PenaltyWeight <= 0 {
		return fmt.Errorf("genetic: penalty_weight must be positive, got %v", c.PenaltyWeight)
	}
	if c.SmoothnessWeight < 0 {
		return fmt.Errorf("genetic: smoothness_weight must not be negative, got %v", c.SmoothnessWeight)
	}
	if c.ExportPriceFactor < 0 {
		return fmt.Errorf("genetic: export_price_factor must not be negative, got %v", c.ExportPriceFactor)
	}
	if c.EarlyStopEpsilon < 0 {
		return fmt.Errorf("genetic: early_stop_epsilon must not be negative, got %v", c.EarlyStopEpsilon)
	}
	if c.EarlyStopPatience < 0 {
		return fmt.Errorf("genetic: early_stop_patience must not be negative, got %d", c.EarlyStopPatience)
	}
	if c.WarmStartFraction < 0 || c.WarmStartFraction > 1 {
		return fmt.Errorf("genetic: warm_start_fraction %v outside [0, 1]", c.WarmStartFraction)
	}
	return nil
}

// SlotDuration returns the configured slot length.
func (c Config) SlotDuration() time.Duration {
	return time.Duration(c.SlotMinutes) * time.Minute
}
