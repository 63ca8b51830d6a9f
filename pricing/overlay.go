package pricing

import (
	"context"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/forecast"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
)

// Overlay decorates a forecast provider and applies the multipliers of all
// active tariff events to the price vector. Slot windows are anchored at
// the snapshot timestamp, each lasting SlotDuration.
type Overlay struct {
	base  forecast.SnapshotProvider
	store *EventStore
	log   logger.Logger
	now   func() time.Time
}

// NewOverlay wraps base. With a nil store the overlay passes snapshots
// through unchanged.
func NewOverlay(base forecast.SnapshotProvider, store *EventStore, log logger.Logger) *Overlay {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Overlay{base: base, store: store, log: log, now: time.Now}
}

// Snapshot fetches the base snapshot and scales the prices of slots that
// overlap an active event. The base slice is never mutated.
func (o *Overlay) Snapshot(ctx context.Context) (model.ForecastSnapshot, error) {
	snap, err := o.base.Snapshot(ctx)
	if err != nil || o.store == nil {
		return snap, err
	}
	active := o.store.Active(o.now())
	if len(active) == 0 {
		return snap, nil
	}
	prices := make([]float64, len(snap.PricePerKWh))
	copy(prices, snap.PricePerKWh)
	adjusted := 0
	for i := range prices {
		slotStart := snap.Timestamp.Add(time.Duration(i) * snap.SlotDuration)
		slotEnd := slotStart.Add(snap.SlotDuration)
		mult := 1.0
		for _, ev := range active {
			if ev.Overlaps(slotStart, slotEnd) {
				mult *= ev.Multiplier
			}
		}
		if mult != 1 {
			prices[i] *= mult
			adjusted++
		}
	}
	snap.PricePerKWh = prices
	if adjusted > 0 {
		o.log.Debugf("tariff overlay adjusted %d of %d price slots", adjusted, len(prices))
	}
	return snap, nil
}
