package events

import "time"

// TariffEvent is emitted when a tariff adjustment is accepted from a feed.
type TariffEvent struct {
	Kind       string
	Start      time.Time
	End        time.Time
	Multiplier float64
}
