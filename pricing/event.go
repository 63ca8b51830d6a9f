package pricing

import (
	"fmt"
	"time"
)

// Tariff event kinds accepted by the feeds.
const (
	KindPeak   = "peak"
	KindRebate = "rebate"
)

// TariffEvent is a temporary price adjustment pushed by the grid operator.
// Every forecast price slot overlapping the event window is scaled by
// Multiplier before the optimizer sees it.
type TariffEvent struct {
	Kind       string            `json:"kind"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Multiplier float64           `json:"multiplier"`
	Meta       map[string]string `json:"meta"`
}

// Validate checks that the event payload is usable.
func (e TariffEvent) Validate() error {
	switch e.Kind {
	case KindPeak, KindRebate:
	default:
		return fmt.Errorf("unknown tariff kind: %s", e.Kind)
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return fmt.Errorf("start_time and end_time required")
	}
	if !e.EndTime.After(e.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	if e.Multiplier <= 0 {
		return fmt.Errorf("multiplier must be positive")
	}
	return nil
}

// Overlaps reports whether the event window intersects the half-open
// interval [start, end).
func (e TariffEvent) Overlaps(start, end time.Time) bool {
	return e.StartTime.Before(end) && e.EndTime.After(start)
}
