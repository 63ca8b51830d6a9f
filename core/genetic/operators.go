package genetic

import "math/rand"

// tournament returns the index of the lowest-fitness entrant among size
// random picks.
func tournament(fitness []float64, size int, rng *rand.Rand) int {
	best := rng.Intn(len(fitness))
	for i := 1; i < size; i++ {
		idx := rng.Intn(len(fitness))
		if fitness[idx] < fitness[best] {
			best = idx
		}
	}
	return best
}

// crossover mixes two parents into a child using one or two cut points.
// Horizons too short to cut return a copy of the first parent.
func crossover(a, b Genotype, points int, rng *rand.Rand) Genotype {
	h := len(a)
	if h < 2 {
		return a.Clone()
	}
	child := a.Clone()
	if points == 2 && h > 2 {
		c1 := 1 + rng.Intn(h-2)
		c2 := c1 + 1 + rng.Intn(h-c1-1)
		copy(child[c1:c2], b[c1:c2])
		return child
	}
	cut := 1 + rng.Intn(h-1)
	copy(child[cut:], b[cut:])
	return child
}

// mutate perturbs genes in place. Each gene mutates with the given
// probability, adding Gaussian noise with stddev sigma, clipped back to the
// gene range.
func mutate(g Genotype, rate, sigma float64, rng *rand.Rand) {
	for i := range g {
		if rng.Float64() < rate {
			g[i] += rng.NormFloat64() * sigma
			if g[i] > 1 {
				g[i] = 1
			} else if g[i] < -1 {
				g[i] = -1
			}
		}
	}
}
