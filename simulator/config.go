package main

import (
	"fmt"
	"time"
)

// Config holds parameters for the household simulator.
type Config struct {
	Broker      string
	TopicPrefix string

	SolarTopic string
	PriceTopic string
	SoCTopic   string
	LoadTopic  string

	Horizon     int
	SlotMinutes int
	Interval    time.Duration

	InitialSoC      float64
	CapacityKWh     float64
	ChargeRateKW    float64
	DischargeRateKW float64
	BatteryProfile  string

	PeakSolarKW float64
	BaseLoadKW  float64
	DayPrice    float64
	NightPrice  float64

	ApplyLatency time.Duration
	DropRate     float64
	Seed         int64

	ProfileFile string
	Verbose     bool

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

// Validate checks parameter ranges before the simulator starts.
func (c *Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("slot-minutes must be positive, got %d", c.SlotMinutes)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.InitialSoC < 0 || c.InitialSoC > 1 {
		return fmt.Errorf("soc must be within [0,1], got %.2f", c.InitialSoC)
	}
	if c.CapacityKWh <= 0 {
		return fmt.Errorf("capacity must be positive, got %.1f", c.CapacityKWh)
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("drop-rate must be within [0,1], got %.2f", c.DropRate)
	}
	return nil
}

// defaultTopics derives unset sensor topics from the topic prefix.
func (c *Config) defaultTopics() {
	if c.SolarTopic == "" {
		c.SolarTopic = c.TopicPrefix + "/sensors/pv"
	}
	if c.PriceTopic == "" {
		c.PriceTopic = c.TopicPrefix + "/sensors/price"
	}
	if c.SoCTopic == "" {
		c.SoCTopic = c.TopicPrefix + "/sensors/soc"
	}
	if c.LoadTopic == "" {
		c.LoadTopic = c.TopicPrefix + "/sensors/load"
	}
}
