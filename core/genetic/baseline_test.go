package genetic

import (
	"testing"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

func TestGreedyGenotypeFlatTariff(t *testing.T) {
	snap := decodeSnapshot()
	g := GreedyGenotype(snap)
	for i, v := range g {
		if v != 0 {
			t.Fatalf("flat tariff gene %d = %v, want hold", i, v)
		}
	}
}

func TestGreedyGenotypeArbitrage(t *testing.T) {
	g := GreedyGenotype(arbitrageSnapshot())
	want := Genotype{-1, 1, 1, -1}
	for i := range g {
		if g[i] != want[i] {
			t.Fatalf("gene %d = %v, want %v", i, g[i], want[i])
		}
	}
}

func TestGreedyGenotypeEmpty(t *testing.T) {
	if got := GreedyGenotype(model.ForecastSnapshot{}); len(got) != 0 {
		t.Fatalf("empty snapshot must yield empty genotype")
	}
}

func TestZeroGenotype(t *testing.T) {
	g := ZeroGenotype(5)
	if len(g) != 5 {
		t.Fatalf("length = %d, want 5", len(g))
	}
	for i, v := range g {
		if v != 0 {
			t.Fatalf("gene %d = %v, want 0", i, v)
		}
	}
}
