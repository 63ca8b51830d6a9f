package forecast

import (
	"context"
	"sync"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// StaticProvider serves a fixed snapshot. It is used in tests and in
// replay scenarios where the inputs are known up front.
type StaticProvider struct {
	mu   sync.Mutex
	snap model.ForecastSnapshot
	err  error
}

// NewStaticProvider returns a provider that always serves snap.
func NewStaticProvider(snap model.ForecastSnapshot) *StaticProvider {
	return &StaticProvider{snap: snap}
}

// Snapshot returns a copy of the configured snapshot or the configured error.
func (p *StaticProvider) Snapshot(ctx context.Context) (model.ForecastSnapshot, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return model.ForecastSnapshot{}, p.err
	}
	return copySnapshot(p.snap), nil
}

// Set replaces the served snapshot.
func (p *StaticProvider) Set(snap model.ForecastSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap = copySnapshot(snap)
	p.err = nil
}

// SetError makes subsequent Snapshot calls fail with err until Set is called.
func (p *StaticProvider) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func copySnapshot(snap model.ForecastSnapshot) model.ForecastSnapshot {
	out := snap
	out.SolarForecastKW = append([]float64(nil), snap.SolarForecastKW...)
	out.PricePerKWh = append([]float64(nil), snap.PricePerKWh...)
	if snap.BaseLoadKW != nil {
		out.BaseLoadKW = append([]float64(nil), snap.BaseLoadKW...)
	}
	return out
}
