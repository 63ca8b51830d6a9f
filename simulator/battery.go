package main

import (
	"math"
	"sync"
	"time"
)

// SimBattery models a home battery with charge and discharge limits.
type SimBattery struct {
	CapacityKWh     float64 // total capacity
	ChargeRateKW    float64 // maximum charging power
	DischargeRateKW float64 // maximum discharging power

	mu  sync.Mutex
	soc float64 // state of charge [0,1]
}

// NewSimBattery creates a battery at the given initial state of charge.
func NewSimBattery(capacityKWh, chargeRateKW, dischargeRateKW, initialSoC float64) *SimBattery {
	return &SimBattery{
		CapacityKWh:     capacityKWh,
		ChargeRateKW:    chargeRateKW,
		DischargeRateKW: dischargeRateKW,
		soc:             initialSoC,
	}
}

// ApplyPower updates the SoC according to the requested power and duration.
// Positive power charges the battery, negative discharges it. It returns the
// actual power applied after enforcing rate and capacity limits.
func (b *SimBattery) ApplyPower(powerKW float64, dt time.Duration) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	hours := dt.Hours()
	if hours <= 0 {
		return 0
	}

	actual := powerKW
	if powerKW > 0 { // charge
		if powerKW > b.ChargeRateKW {
			actual = b.ChargeRateKW
		}
		room := (1 - b.soc) * b.CapacityKWh
		moved := actual * hours
		if moved > room {
			moved = room
			actual = moved / hours
		}
		b.soc += moved / b.CapacityKWh
	} else if powerKW < 0 { // discharge
		p := math.Abs(powerKW)
		if p > b.DischargeRateKW {
			p = b.DischargeRateKW
		}
		stored := b.soc * b.CapacityKWh
		moved := p * hours
		if moved > stored {
			moved = stored
			p = moved / hours
		}
		b.soc -= moved / b.CapacityKWh
		actual = -p
	}

	if b.soc < 0 {
		b.soc = 0
	}
	if b.soc > 1 {
		b.soc = 1
	}
	return actual
}

// SoC returns the current state of charge.
func (b *SimBattery) SoC() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.soc
}
