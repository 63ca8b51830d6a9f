package planstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

func makeResult(id string, fitness float64) model.RunResult {
	return model.RunResult{
		ID:          id,
		CreatedAt:   time.Now(),
		BestFitness: fitness,
		Plan: model.DispatchPlan{
			BatteryKW:    []float64{1, -1},
			SoC:          []float64{0.5, 0.7, 0.5},
			GridKW:       []float64{1, -1},
			Violations:   []float64{0, 0},
			SlotDuration: time.Hour,
		},
		Genotype: []float64{1, -1},
		Feasible: true,
	}
}

func TestLatestEmpty(t *testing.T) {
	s := NewMemoryStore(4)
	if _, ok := s.Latest(); ok {
		t.Fatal("expected no result before first Set")
	}
}

func TestSetReplacesLatest(t *testing.T) {
	s := NewMemoryStore(4)
	s.Set(makeResult("a", -0.5))
	s.Set(makeResult("b", -0.8))

	got, ok := s.Latest()
	if !ok || got.ID != "b" {
		t.Fatalf("latest = %+v ok=%v, want run b", got, ok)
	}
}

func TestLatestReturnsCopy(t *testing.T) {
	s := NewMemoryStore(4)
	s.Set(makeResult("a", -0.5))

	got, _ := s.Latest()
	got.Plan.BatteryKW[0] = 99
	got.Genotype[0] = 99

	again, _ := s.Latest()
	if again.Plan.BatteryKW[0] != 1 || again.Genotype[0] != 1 {
		t.Fatalf("store state mutated through returned result: %+v", again)
	}
}

func TestHistoryNewestFirstAndBounded(t *testing.T) {
	s := NewMemoryStore(3)
	for i := 0; i < 5; i++ {
		s.Set(makeResult(fmt.Sprintf("r%d", i), float64(-i)))
	}

	all := s.History(0)
	if len(all) != 3 {
		t.Fatalf("history length = %d, want 3", len(all))
	}
	if all[0].ID != "r4" || all[2].ID != "r2" {
		t.Fatalf("history order wrong: %s .. %s", all[0].ID, all[2].ID)
	}

	two := s.History(2)
	if len(two) != 2 || two[0].ID != "r4" || two[1].ID != "r3" {
		t.Fatalf("limited history wrong: %+v", two)
	}
}
