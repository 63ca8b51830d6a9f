package config

import (
	"fmt"

	"github.com/FilipeDoria/genetic-load-manager/auth"
	"github.com/FilipeDoria/genetic-load-manager/connectors/factory"
)

// MarketConfig selects the day-ahead market data connector and its
// credentials. Only the prices command uses it.
type MarketConfig struct {
	Connector string    `json:"connector"`
	Auth      auth.Conf `json:"auth"`
}

// SetDefaults applies fallback values for optional fields.
func (c *MarketConfig) SetDefaults() {
	if c.Connector == "" {
		c.Connector = factory.IDWholesaleMarket
	}
}

// Validate checks that the configured connector exists.
func (c MarketConfig) Validate() error {
	if _, err := factory.NewClient(c.Connector); err != nil {
		return fmt.Errorf("market connector: %w", err)
	}
	return nil
}
