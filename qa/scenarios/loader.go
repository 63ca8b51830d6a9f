package scenarios

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

type BatteryDef struct {
	CapacityKWh         float64 `yaml:"capacity_kwh"`
	MaxChargeKW         float64 `yaml:"max_charge_kw"`
	MaxDischargeKW      float64 `yaml:"max_discharge_kw"`
	MinSoC              float64 `yaml:"min_soc"`
	MaxSoC              float64 `yaml:"max_soc"`
	ChargeEfficiency    float64 `yaml:"charge_efficiency,omitempty"`
	DischargeEfficiency float64 `yaml:"discharge_efficiency,omitempty"`
}

func (b BatteryDef) ToModel() model.BatterySpec {
	return model.BatterySpec{
		CapacityKWh:         b.CapacityKWh,
		MaxChargeKW:         b.MaxChargeKW,
		MaxDischargeKW:      b.MaxDischargeKW,
		MinSoC:              b.MinSoC,
		MaxSoC:              b.MaxSoC,
		ChargeEfficiency:    b.ChargeEfficiency,
		DischargeEfficiency: b.DischargeEfficiency,
	}
}

type SearchDef struct {
	PopulationSize int   `yaml:"population_size"`
	Generations    int   `yaml:"generations"`
	Workers        int   `yaml:"workers,omitempty"`
	Seed           int64 `yaml:"seed,omitempty"`
}

type Expected struct {
	Feasible       bool    `yaml:"feasible"`
	ChargeSlots    []int   `yaml:"charge_slots,omitempty"`
	DischargeSlots []int   `yaml:"discharge_slots,omitempty"`
	MinSavings     float64 `yaml:"min_savings,omitempty"`
}

type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Battery     BatteryDef `yaml:"battery"`
	InitialSoC  float64    `yaml:"initial_soc"`
	SlotMinutes int        `yaml:"slot_minutes"`
	SolarKW     []float64  `yaml:"solar_kw"`
	PricePerKWh []float64  `yaml:"price_per_kwh"`
	BaseLoadKW  []float64  `yaml:"base_load_kw,omitempty"`
	Search      SearchDef  `yaml:"search"`
	Expected    Expected   `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Snapshot builds the forecast snapshot described by the scenario.
func (s *Scenario) Snapshot() model.ForecastSnapshot {
	return model.ForecastSnapshot{
		SolarForecastKW: s.SolarKW,
		PricePerKWh:     s.PricePerKWh,
		BaseLoadKW:      s.BaseLoadKW,
		SoC:             s.InitialSoC,
		Battery:         s.Battery.ToModel(),
		SlotDuration:    time.Duration(s.SlotMinutes) * time.Minute,
		Timestamp:       time.Now(),
	}
}
