package config

import "fmt"

// Forecast source names accepted by ProviderConfig.
const (
	SourceSynthetic     = "synthetic"
	SourceMQTT          = "mqtt"
	SourceHomeAssistant = "homeassistant"
)

// ProviderConfig selects where forecast snapshots come from.
type ProviderConfig struct {
	// Source is one of "synthetic", "mqtt" or "homeassistant".
	Source string `json:"source"`
}

// SetDefaults applies sane defaults.
func (c *ProviderConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = SourceSynthetic
	}
}

// Validate checks the source name.
func (c ProviderConfig) Validate() error {
	switch c.Source {
	case SourceSynthetic, SourceMQTT, SourceHomeAssistant:
		return nil
	default:
		return fmt.Errorf("unknown provider source %s", c.Source)
	}
}
