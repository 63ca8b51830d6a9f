package factory

import (
	"fmt"

	"github.com/FilipeDoria/genetic-load-manager/connectors"
	wholesalemarket "github.com/FilipeDoria/genetic-load-manager/connectors/clients/wholesaleMarket"
)

const (
	IDWholesaleMarket = "wholesale_market"
)

var errUnknownClient = "unknown connector id: %s"

// NewClient returns the market data client registered under id.
func NewClient(id string) (connectors.Client, error) {
	switch id {
	case IDWholesaleMarket:
		return &wholesalemarket.Client{}, nil
	default:
		return nil, fmt.Errorf(errUnknownClient, id)
	}
}
