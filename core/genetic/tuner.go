package genetic

import (
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// Tuner adjusts optimizer parameters between runs based on past results.
type Tuner interface {
	Tune(history []model.RunResult)
}

// NoopTuner leaves the optimizer unchanged.
type NoopTuner struct{}

func (NoopTuner) Tune(_ []model.RunResult) {}

// AdaptiveTuner widens the mutation rate when successive runs stop improving
// on their baselines and decays it back toward the configured base otherwise.
// Stagnation usually means the search keeps refining the same local optimum;
// more mutation buys exploration.
type AdaptiveTuner struct {
	Optimizer *Optimizer
	BaseRate  float64
	MaxRate   float64
	Step      float64
	Window    int

	mu sync.Mutex
}

// NewAdaptiveTuner returns a tuner with working defaults bound to the given
// optimizer. It returns nil if the optimizer is nil.
func NewAdaptiveTuner(o *Optimizer) *AdaptiveTuner {
	if o == nil {
		return nil
	}
	return &AdaptiveTuner{
		Optimizer: o,
		BaseRate:  o.MutationRate(),
		MaxRate:   0.5,
		Step:      0.02,
		Window:    5,
	}
}

// Tune inspects the savings of the most recent runs and nudges the mutation
// rate accordingly.
func (t *AdaptiveTuner) Tune(history []model.RunResult) {
	if t == nil || t.Optimizer == nil || len(history) < 2 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	window := t.Window
	if window < 2 {
		window = 2
	}
	if len(history) < window {
		window = len(history)
	}
	recent := history[len(history)-window:]
	savings := make([]float64, len(recent))
	for i, r := range recent {
		savings[i] = r.Savings()
	}
	mean := stat.Mean(savings[:len(savings)-1], nil)
	latest := savings[len(savings)-1]

	rate := t.Optimizer.MutationRate()
	if latest <= mean {
		rate += t.Step
		if rate > t.MaxRate {
			rate = t.MaxRate
		}
	} else if rate > t.BaseRate {
		rate -= t.Step
		if rate < t.BaseRate {
			rate = t.BaseRate
		}
	}
	t.Optimizer.SetMutationRate(rate)
}
