package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidSnapshot marks forecast snapshots that fail validation. The
// affected optimization cycle is skipped; it is never fatal for the service.
var ErrInvalidSnapshot = errors.New("invalid forecast snapshot")

// BatterySpec describes the physical limits of the controlled battery.
type BatterySpec struct {
	CapacityKWh           float64 `json:"capacity_kwh"`             // usable capacity in kWh
	MaxChargeKW           float64 `json:"max_charge_kw"`            // maximum charging power in kW
	MaxDischargeKW        float64 `json:"max_discharge_kw"`         // maximum discharging power in kW
	MinSoC                float64 `json:"min_soc"`                  // lower SoC bound between 0 and 1
	MaxSoC                float64 `json:"max_soc"`                  // upper SoC bound between 0 and 1
	ChargeEfficiency      float64 `json:"charge_efficiency"`        // fraction of charged energy stored, 1 if zero
	DischargeEfficiency   float64 `json:"discharge_efficiency"`     // fraction of stored energy delivered, 1 if zero
	DegradationCostPerKWh float64 `json:"degradation_cost_per_kwh"` // wear cost per kWh of battery throughput
}

// Normalized returns a copy with zero-valued optional fields replaced by their
// neutral defaults.
func (b BatterySpec) Normalized() BatterySpec {
	if b.MaxSoC == 0 {
		b.MaxSoC = 1
	}
	if b.ChargeEfficiency == 0 {
		b.ChargeEfficiency = 1
	}
	if b.DischargeEfficiency == 0 {
		b.DischargeEfficiency = 1
	}
	return b
}

// Validate checks that the battery limits are physically sound.
func (b BatterySpec) Validate() error {
	b = b.Normalized()
	if b.CapacityKWh <= 0 || math.IsInf(b.CapacityKWh, 0) || math.IsNaN(b.CapacityKWh) {
		return fmt.Errorf("%w: battery capacity must be positive, got %v", ErrInvalidSnapshot, b.CapacityKWh)
	}
	if b.MaxChargeKW < 0 || b.MaxDischargeKW < 0 {
		return fmt.Errorf("%w: battery power limits must not be negative", ErrInvalidSnapshot)
	}
	if b.MaxChargeKW == 0 && b.MaxDischargeKW == 0 {
		return fmt.Errorf("%w: battery cannot charge nor discharge", ErrInvalidSnapshot)
	}
	if b.MinSoC < 0 || b.MaxSoC > 1 || b.MinSoC >= b.MaxSoC {
		return fmt.Errorf("%w: soc bounds [%v, %v] out of order", ErrInvalidSnapshot, b.MinSoC, b.MaxSoC)
	}
	if b.ChargeEfficiency <= 0 || b.ChargeEfficiency > 1 || b.DischargeEfficiency <= 0 || b.DischargeEfficiency > 1 {
		return fmt.Errorf("%w: efficiencies must be in (0, 1]", ErrInvalidSnapshot)
	}
	if b.DegradationCostPerKWh < 0 {
		return fmt.Errorf("%w: degradation cost must not be negative", ErrInvalidSnapshot)
	}
	return nil
}

// ForecastSnapshot carries everything one optimization run reads from the
// environment. Vectors are indexed by time slot over the planning horizon.
type ForecastSnapshot struct {
	SolarForecastKW []float64     `json:"solar_forecast_kw"` // expected PV production per slot in kW
	PricePerKWh     []float64     `json:"price_per_kwh"`     // grid energy price per slot
	BaseLoadKW      []float64     `json:"base_load_kw"`      // household load per slot in kW, nil means zero
	SoC             float64       `json:"soc"`               // battery state of charge between 0 and 1
	Battery         BatterySpec   `json:"battery"`
	SlotDuration    time.Duration `json:"slot_duration"`
	Timestamp       time.Time     `json:"timestamp"` // when the snapshot inputs were produced
}

// Horizon returns the number of slots covered by the snapshot vectors.
func (s ForecastSnapshot) Horizon() int { return len(s.SolarForecastKW) }

// LoadAt returns the base load for slot i, treating a nil vector as zero load.
func (s ForecastSnapshot) LoadAt(i int) float64 {
	if s.BaseLoadKW == nil {
		return 0
	}
	return s.BaseLoadKW[i]
}

// Validate checks vector lengths against the configured horizon and rejects
// non-finite values. Any failure wraps ErrInvalidSnapshot.
func (s ForecastSnapshot) Validate(horizon int) error {
	if horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %d", ErrInvalidSnapshot, horizon)
	}
	if len(s.SolarForecastKW) != horizon {
		return fmt.Errorf("%w: solar forecast has %d slots, want %d", ErrInvalidSnapshot, len(s.SolarForecastKW), horizon)
	}
	if len(s.PricePerKWh) != horizon {
		return fmt.Errorf("%w: price forecast has %d slots, want %d", ErrInvalidSnapshot, len(s.PricePerKWh), horizon)
	}
	if s.BaseLoadKW != nil && len(s.BaseLoadKW) != horizon {
		return fmt.Errorf("%w: base load has %d slots, want %d", ErrInvalidSnapshot, len(s.BaseLoadKW), horizon)
	}
	for i := 0; i < horizon; i++ {
		if !isFinite(s.SolarForecastKW[i]) || !isFinite(s.PricePerKWh[i]) || !isFinite(s.LoadAt(i)) {
			return fmt.Errorf("%w: non-finite value at slot %d", ErrInvalidSnapshot, i)
		}
		if s.SolarForecastKW[i] < 0 {
			return fmt.Errorf("%w: negative solar forecast at slot %d", ErrInvalidSnapshot, i)
		}
	}
	if !isFinite(s.SoC) || s.SoC < 0 || s.SoC > 1 {
		return fmt.Errorf("%w: state of charge %v outside [0, 1]", ErrInvalidSnapshot, s.SoC)
	}
	if s.SlotDuration <= 0 {
		return fmt.Errorf("%w: slot duration must be positive", ErrInvalidSnapshot)
	}
	return s.Battery.Validate()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
