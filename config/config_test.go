package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const sampleConfig = `battery:
  capacity_kwh: 10
  max_charge_kw: 5
  max_discharge_kw: 5
  min_soc: 0.1
  max_soc: 0.9
genetic:
  horizon: 24
  slot_minutes: 60
  population_size: 40
  generations: 50
  seed: 7
scheduler:
  interval_seconds: 120
  stale_after_seconds: 600
provider:
  source: "mqtt"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "glm"
  topic_prefix: "home/energy"
sensors:
  solar_topic: "home/energy/sensors/pv"
  price_topic: "home/energy/sensors/price"
  soc_topic: "home/energy/sensors/soc"
metrics:
  prometheus_enabled: true
runlog:
  backend: "sqlite"
  path: "runs.db"
api:
  enabled: true
  address: ":8085"
`

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"battery.capacity_kwh", cfg.Battery.CapacityKWh, 10.0},
		{"genetic.horizon", cfg.Genetic.Horizon, 24},
		{"genetic.population_size", cfg.Genetic.PopulationSize, 40},
		{"genetic.seed", cfg.Genetic.Seed, int64(7)},
		{"scheduler.interval_seconds", cfg.Scheduler.IntervalSeconds, 120},
		{"scheduler.stale_after_seconds", cfg.Scheduler.StaleAfterSeconds, 600},
		{"provider.source", cfg.Provider.Source, "mqtt"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.topic_prefix", cfg.MQTT.TopicPrefix, "home/energy"},
		{"sensors.solar_topic", cfg.Sensors.SolarTopic, "home/energy/sensors/pv"},
		{"metrics.prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.prometheus_port_default", cfg.Metrics.PrometheusPort, ":2112"},
		{"runlog.backend", cfg.RunLog.Backend, "sqlite"},
		{"runlog.path", cfg.RunLog.Path, "runs.db"},
		{"logging.level_default", cfg.Logging.Level, "info"},
		{"api.address", cfg.API.Address, ":8085"},
		{"genetic.crossover_rate_default", cfg.Genetic.CrossoverRate, 0.85},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("GLM_MQTT__BROKER", "tcp://override:1883")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.MQTT.Broker != "tcp://override:1883" {
		t.Errorf("env override not applied: %s", cfg.MQTT.Broker)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Errorf("expected unsupported format error")
	}

	path := writeConfig(t, `genetic:
  population_size: 1
`)
	if _, err := Load(path); err == nil {
		t.Errorf("expected population size error")
	}

	path = writeConfig(t, `provider:
  source: "oracle"
`)
	if _, err := Load(path); err == nil {
		t.Errorf("expected provider source error")
	}

	path = writeConfig(t, `provider:
  source: "homeassistant"
battery:
  capacity_kwh: 10
  max_charge_kw: 5
  max_discharge_kw: 5
  min_soc: 0.1
  max_soc: 0.9
homeassistant:
  base_url: "http://ha.local:8123"
`)
	if _, err := Load(path); err == nil {
		t.Errorf("expected homeassistant token error")
	}
}
