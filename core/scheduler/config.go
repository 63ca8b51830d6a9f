package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines the periodic optimization loop parameters.
type Config struct {
	IntervalSeconds   int `json:"interval_seconds" yaml:"interval_seconds"`
	StaleAfterSeconds int `json:"stale_after_seconds" yaml:"stale_after_seconds"`
	HistorySize       int `json:"history_size" yaml:"history_size"`
	// SkipInfeasible retains the previous plan when a run ends with SoC
	// violations instead of publishing the flagged result.
	SkipInfeasible bool `json:"skip_infeasible" yaml:"skip_infeasible"`
}

// SetDefaults fills unset fields with sensible defaults. Snapshots are
// tolerated up to two intervals of age unless configured otherwise.
func (c *Config) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 300
	}
	if c.StaleAfterSeconds == 0 {
		c.StaleAfterSeconds = 2 * c.IntervalSeconds
	}
	if c.HistorySize == 0 {
		c.HistorySize = 32
	}
}

// Validate reports configuration errors. These are fatal at construction.
func (c Config) Validate() error {
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("scheduler: interval_seconds must be positive")
	}
	if c.StaleAfterSeconds < 0 {
		return fmt.Errorf("scheduler: stale_after_seconds must not be negative")
	}
	if c.HistorySize < 0 {
		return fmt.Errorf("scheduler: history_size must not be negative")
	}
	return nil
}

// Interval returns the tick period.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// StaleAfter returns the maximum tolerated snapshot age. Zero disables
// the freshness check.
func (c Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterSeconds) * time.Second
}

// LoadConfig loads Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	return cfg, err
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		dec := json.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}
