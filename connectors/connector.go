package connectors

import (
	"context"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/auth"
)

// ErrIncompatibleOption is the format used when an option is applied to a
// client that does not understand it.
const ErrIncompatibleOption = "option %s is not supported by client %s"

// Option configures a client before a fetch.
type Option func(Client) error

// PricePoint is one market price interval, normalized to EUR/kWh.
type PricePoint struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	PricePerKWh float64   `json:"price_per_kwh"`
}

// Client fetches day-ahead market prices from an external data provider.
type Client interface {
	Fetch(ctx context.Context, authClient auth.HeaderSetter, opts ...Option) (Response, error)
}

// Response is the provider specific payload of a fetch.
type Response interface {
	// PricePoints converts the payload into chronological price intervals.
	PricePoints() ([]PricePoint, error)
	// PriceChartHTML renders the raw prices as a standalone HTML chart.
	PriceChartHTML() (string, error)
}
