package eco

import "time"

// Record aggregates energy exchange metrics for the site and day.
type Record struct {
	Date          time.Time
	ExportedKWh   float64
	ImportedKWh   float64
	ThroughputKWh float64
	SavedCost     float64
}

// CO2Avoided returns the grams of CO2 avoided using the emission factor.
// Exported energy displaces grid production.
func (r Record) CO2Avoided(factor float64) float64 {
	return r.ExportedKWh * factor
}

// EnergyRatio returns the ratio of exported to imported energy.
func (r Record) EnergyRatio() float64 {
	if r.ImportedKWh == 0 {
		if r.ExportedKWh == 0 {
			return 0
		}
		return r.ExportedKWh
	}
	return r.ExportedKWh / r.ImportedKWh
}
