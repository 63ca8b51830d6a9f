package eco

import "github.com/FilipeDoria/genetic-load-manager/core/model"

// FromResult folds one optimization run into a daily KPI record. Battery
// throughput counts energy moved in either direction.
func FromResult(res model.RunResult) Record {
	plan := res.Plan
	var throughput float64
	h := plan.SlotDuration.Hours()
	for _, kw := range plan.BatteryKW {
		if kw < 0 {
			throughput -= kw * h
		} else {
			throughput += kw * h
		}
	}
	return Record{
		Date:          res.CreatedAt,
		ExportedKWh:   plan.ExportKWh(),
		ImportedKWh:   plan.ImportKWh(),
		ThroughputKWh: throughput,
		SavedCost:     res.Savings(),
	}
}
