package genetic

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// GreedyGenotype builds a price-threshold heuristic: charge through the
// cheapest quartile of slots, discharge through the dearest quartile, hold
// everywhere else. It is a non-search reference point and one of the seeds
// of the initial population.
func GreedyGenotype(snap model.ForecastSnapshot) Genotype {
	h := snap.Horizon()
	g := make(Genotype, h)
	if h == 0 {
		return g
	}
	prices := append([]float64(nil), snap.PricePerKWh...)
	sort.Float64s(prices)
	low := stat.Quantile(0.25, stat.Empirical, prices, nil)
	high := stat.Quantile(0.75, stat.Empirical, prices, nil)
	if low == high {
		// Flat tariff, nothing to arbitrage.
		return g
	}
	for i, p := range snap.PricePerKWh {
		switch {
		case p <= low:
			g[i] = 1
		case p >= high:
			g[i] = -1
		}
	}
	return g
}
