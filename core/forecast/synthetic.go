package forecast

import (
	"context"
	"math"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// SyntheticProvider generates a plausible residential day profile from the
// clock: a solar bell between 06:00 and 18:00, a two-peak tariff and a flat
// base load with an evening bump. It backs demos and soak tests when no
// live data source is wired.
type SyntheticProvider struct {
	Horizon      int
	SlotDuration time.Duration
	Battery      model.BatterySpec
	SoC          float64
	PeakSolarKW  float64
	BaseLoadKW   float64
	OffPeakPrice float64
	PeakPrice    float64

	// Now reports the current time. Tests override it for fixed profiles.
	Now func() time.Time
}

// NewSyntheticProvider returns a provider with typical household defaults.
func NewSyntheticProvider(horizon int, slot time.Duration, battery model.BatterySpec) *SyntheticProvider {
	return &SyntheticProvider{
		Horizon:      horizon,
		SlotDuration: slot,
		Battery:      battery,
		SoC:          0.5,
		PeakSolarKW:  5,
		BaseLoadKW:   0.8,
		OffPeakPrice: 0.12,
		PeakPrice:    0.34,
		Now:          time.Now,
	}
}

// Snapshot builds the profile for the next Horizon slots starting now.
func (p *SyntheticProvider) Snapshot(ctx context.Context) (model.ForecastSnapshot, error) {
	_ = ctx
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	start := now.Truncate(p.SlotDuration)
	snap := model.ForecastSnapshot{
		SolarForecastKW: make([]float64, p.Horizon),
		PricePerKWh:     make([]float64, p.Horizon),
		BaseLoadKW:      make([]float64, p.Horizon),
		SoC:             p.SoC,
		Battery:         p.Battery,
		SlotDuration:    p.SlotDuration,
		Timestamp:       now,
	}
	for i := 0; i < p.Horizon; i++ {
		mid := start.Add(time.Duration(i) * p.SlotDuration).Add(p.SlotDuration / 2)
		snap.SolarForecastKW[i] = p.solarAt(mid)
		snap.PricePerKWh[i] = p.priceAt(mid)
		snap.BaseLoadKW[i] = p.loadAt(mid)
	}
	return snap, nil
}

// solarAt models production as a half sine between 06:00 and 18:00.
func (p *SyntheticProvider) solarAt(t time.Time) float64 {
	h := float64(t.Hour()) + float64(t.Minute())/60
	if h < 6 || h >= 18 {
		return 0
	}
	return p.PeakSolarKW * math.Sin(math.Pi*(h-6)/12)
}

// priceAt applies the peak tariff during the morning and evening windows.
func (p *SyntheticProvider) priceAt(t time.Time) float64 {
	h := t.Hour()
	if (h >= 7 && h < 10) || (h >= 18 && h < 21) {
		return p.PeakPrice
	}
	return p.OffPeakPrice
}

// loadAt adds an evening bump on top of the flat base load.
func (p *SyntheticProvider) loadAt(t time.Time) float64 {
	h := t.Hour()
	if h >= 18 && h < 22 {
		return p.BaseLoadKW * 1.6
	}
	return p.BaseLoadKW
}
