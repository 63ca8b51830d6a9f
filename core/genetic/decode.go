package genetic

import "github.com/FilipeDoria/genetic-load-manager/core/model"

// Decode expands a genotype into battery, SoC, grid and violation
// trajectories for the given snapshot. The snapshot must already be validated
// against the genotype length.
//
// Decoding is soft: a gene that would push the state of charge past its
// bounds is derated to the feasible flow and the requested excess is recorded
// as a violation, in SoC fraction units. The realized trajectory therefore
// always respects the battery limits while the fitness penalty steers the
// search away from infeasible genotypes.
func Decode(g Genotype, snap model.ForecastSnapshot) model.DispatchPlan {
	h := len(g)
	b := snap.Battery.Normalized()
	dt := snap.SlotDuration.Hours()
	plan := model.DispatchPlan{
		BatteryKW:    make([]float64, h),
		SoC:          make([]float64, h+1),
		GridKW:       make([]float64, h),
		Violations:   make([]float64, h),
		SlotDuration: snap.SlotDuration,
	}
	soc := snap.SoC
	plan.SoC[0] = soc
	for i, gene := range g {
		if gene > 1 {
			gene = 1
		} else if gene < -1 {
			gene = -1
		}
		var power float64 // bus-side power in kW, positive charges
		switch {
		case gene > 0:
			power = gene * b.MaxChargeKW
			delta := power * b.ChargeEfficiency * dt / b.CapacityKWh
			room := b.MaxSoC - soc
			if room < 0 {
				room = 0
			}
			if delta > room {
				plan.Violations[i] = delta - room
				delta = room
				power = delta * b.CapacityKWh / (dt * b.ChargeEfficiency)
			}
			soc += delta
		case gene < 0:
			power = gene * b.MaxDischargeKW
			delta := power * dt / (b.CapacityKWh * b.DischargeEfficiency)
			room := soc - b.MinSoC
			if room < 0 {
				room = 0
			}
			if -delta > room {
				plan.Violations[i] = -delta - room
				delta = -room
				power = delta * b.CapacityKWh * b.DischargeEfficiency / dt
			}
			soc += delta
		}
		plan.BatteryKW[i] = power
		plan.SoC[i+1] = soc
		plan.GridKW[i] = snap.LoadAt(i) + power - snap.SolarForecastKW[i]
	}
	return plan
}
