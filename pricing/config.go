package pricing

import "fmt"

// Config selects how tariff events reach the service.
type Config struct {
	// Mode is "mock" for the local HTTP feed, "generator" for synthetic
	// events, or empty to disable tariff handling.
	Mode        string          `json:"mode"`
	MockAddress string          `json:"mock_address"`
	Generator   GeneratorConfig `json:"generator"`
}

// Enabled reports whether a tariff feed is configured.
func (c Config) Enabled() bool { return c.Mode != "" }

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {
	if c.MockAddress == "" {
		c.MockAddress = "127.0.0.1:8089"
	}
	c.Generator.SetDefaults()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Mode {
	case "", "mock", "generator":
	default:
		return fmt.Errorf("unknown pricing mode %s", c.Mode)
	}
	return c.Generator.Validate()
}

// GeneratorConfig configures the synthetic tariff event generator.
type GeneratorConfig struct {
	MinIntervalSeconds int      `json:"min_interval_seconds"`
	MaxIntervalSeconds int      `json:"max_interval_seconds"`
	MinDurationSeconds int      `json:"min_duration_seconds"`
	MaxDurationSeconds int      `json:"max_duration_seconds"`
	MinMultiplier      float64  `json:"min_multiplier"`
	MaxMultiplier      float64  `json:"max_multiplier"`
	Kinds              []string `json:"kinds"`
	JitterPct          float64  `json:"jitter_pct"`
	Seed               int64    `json:"seed"`
}

// SetDefaults applies fallback values for optional fields.
func (c *GeneratorConfig) SetDefaults() {
	if c.MinIntervalSeconds <= 0 {
		c.MinIntervalSeconds = 120
	}
	if c.MaxIntervalSeconds <= 0 {
		c.MaxIntervalSeconds = 300
	}
	if c.MinDurationSeconds <= 0 {
		c.MinDurationSeconds = 600
	}
	if c.MaxDurationSeconds <= 0 {
		c.MaxDurationSeconds = 3600
	}
	if c.MinMultiplier == 0 {
		c.MinMultiplier = 0.5
	}
	if c.MaxMultiplier == 0 {
		c.MaxMultiplier = 3
	}
	if c.JitterPct == 0 {
		c.JitterPct = 0.15
	}
	if len(c.Kinds) == 0 {
		c.Kinds = []string{KindPeak, KindRebate}
	}
}

// Validate checks the configuration ranges.
func (c GeneratorConfig) Validate() error {
	if c.MinIntervalSeconds < 0 || c.MaxIntervalSeconds < 0 {
		return fmt.Errorf("interval seconds must be positive")
	}
	if c.MinIntervalSeconds > c.MaxIntervalSeconds {
		return fmt.Errorf("min_interval_seconds > max_interval_seconds")
	}
	if c.MinDurationSeconds <= 0 || c.MaxDurationSeconds <= 0 {
		return fmt.Errorf("duration seconds must be >0")
	}
	if c.MinDurationSeconds > c.MaxDurationSeconds {
		return fmt.Errorf("min_duration_seconds > max_duration_seconds")
	}
	if c.MinMultiplier <= 0 || c.MaxMultiplier <= 0 {
		return fmt.Errorf("multipliers must be >0")
	}
	if c.MinMultiplier > c.MaxMultiplier {
		return fmt.Errorf("min_multiplier > max_multiplier")
	}
	for _, k := range c.Kinds {
		if k != KindPeak && k != KindRebate {
			return fmt.Errorf("unknown tariff kind %s", k)
		}
	}
	return nil
}
