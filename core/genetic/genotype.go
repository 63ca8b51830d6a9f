package genetic

import "math/rand"

// Genotype is one candidate plan: one gene per time slot in [-1, 1]. Positive
// genes charge as a fraction of the maximum charging power, negative genes
// discharge as a fraction of the maximum discharging power, zero holds.
type Genotype []float64

// NewRandomGenotype draws a uniform genotype over the gene range.
func NewRandomGenotype(horizon int, rng *rand.Rand) Genotype {
	g := make(Genotype, horizon)
	for i := range g {
		g[i] = rng.Float64()*2 - 1
	}
	return g
}

// ZeroGenotype returns the all-hold candidate used as the do-nothing baseline.
func ZeroGenotype(horizon int) Genotype {
	return make(Genotype, horizon)
}

// Clone returns an independent copy.
func (g Genotype) Clone() Genotype {
	cp := make(Genotype, len(g))
	copy(cp, g)
	return cp
}

// Clip clamps all genes to [-1, 1] in place.
func (g Genotype) Clip() {
	for i, v := range g {
		if v > 1 {
			g[i] = 1
		} else if v < -1 {
			g[i] = -1
		}
	}
}

// ShiftLeft drops the first gene and appends a hold gene. A plan that was
// optimal one slot ago stays aligned with the horizon that starts now.
func (g Genotype) ShiftLeft() Genotype {
	if len(g) == 0 {
		return Genotype{}
	}
	cp := make(Genotype, len(g))
	copy(cp, g[1:])
	return cp
}
