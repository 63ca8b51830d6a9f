package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// House produces forecast vectors for one simulated household.
type House struct {
	cfg  Config
	prof [24]float64
	rng  *rand.Rand
}

// NewHouse creates a household with the given hourly solar profile. The seed
// feeds the load jitter generator.
func NewHouse(cfg Config, prof [24]float64, seed int64) *House {
	return &House{cfg: cfg, prof: prof, rng: rand.New(rand.NewSource(seed))}
}

// SolarForecast returns expected PV production per slot starting at t.
// Production follows a sine bell between 06:00 and 18:00, scaled by the
// hourly profile.
func (h *House) SolarForecast(start time.Time) []float64 {
	out := make([]float64, h.cfg.Horizon)
	for i := range out {
		slot := start.Add(time.Duration(i*h.cfg.SlotMinutes) * time.Minute)
		hour := float64(slot.Hour()) + float64(slot.Minute())/60
		if hour < 6 || hour > 18 {
			continue
		}
		bell := math.Sin(math.Pi * (hour - 6) / 12)
		out[i] = bell * h.cfg.PeakSolarKW * h.prof[slot.Hour()]
	}
	return out
}

// PriceForecast returns the import price per slot starting at t. Night hours
// use the night tariff and the early evening carries a surcharge.
func (h *House) PriceForecast(start time.Time) []float64 {
	out := make([]float64, h.cfg.Horizon)
	for i := range out {
		slot := start.Add(time.Duration(i*h.cfg.SlotMinutes) * time.Minute)
		hr := slot.Hour()
		price := h.cfg.DayPrice
		if hr >= 22 || hr < 7 {
			price = h.cfg.NightPrice
		}
		if hr >= 18 && hr < 21 {
			price *= 1.5
		}
		out[i] = price
	}
	return out
}

// LoadForecast returns the expected household load per slot starting at t.
// Morning and evening peaks sit on top of the configured base, with a small
// random jitter.
func (h *House) LoadForecast(start time.Time) []float64 {
	out := make([]float64, h.cfg.Horizon)
	for i := range out {
		slot := start.Add(time.Duration(i*h.cfg.SlotMinutes) * time.Minute)
		hr := slot.Hour()
		load := h.cfg.BaseLoadKW
		switch {
		case hr >= 7 && hr < 9:
			load *= 1.8
		case hr >= 18 && hr < 22:
			load *= 2.2
		}
		load += h.rng.Float64() * 0.1 * h.cfg.BaseLoadKW
		out[i] = load
	}
	return out
}

// LoadDayProfile reads an hourly scaling profile from JSON. Keys are hour
// strings ("0" to "23"), values scale the solar forecast for that hour.
// Hours missing from the file stay at zero.
func LoadDayProfile(data []byte) ([24]float64, error) {
	var m map[string]float64
	var prof [24]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return prof, err
	}
	for h, v := range m {
		var hour int
		if _, err := fmt.Sscanf(h, "%d", &hour); err != nil {
			continue
		}
		if hour >= 0 && hour < 24 {
			prof[hour] = v
		}
	}
	return prof, nil
}
