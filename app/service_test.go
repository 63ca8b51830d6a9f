package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FilipeDoria/genetic-load-manager/config"
)

func writeServiceConfig(t *testing.T, runPath string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := fmt.Sprintf(`genetic:
  horizon: 6
  slot_minutes: 60
  population_size: 16
  generations: 5
  workers: 1
  seed: 42
scheduler:
  interval_seconds: 60
provider:
  source: "synthetic"
runlog:
  backend: "jsonl"
  path: %q
`, runPath)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestServiceTickStoresAndLogsRun(t *testing.T) {
	runPath := filepath.Join(t.TempDir(), "runs.log")
	cfg, err := config.Load(writeServiceConfig(t, runPath))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()

	svc.Scheduler.Tick(context.Background())

	data, err := os.ReadFile(runPath)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	if !strings.Contains(string(data), "initial_soc") {
		t.Fatalf("run log missing record: %s", data)
	}
}

func TestServiceRequiresBrokerForSensorSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `battery:
  capacity_kwh: 10
  max_charge_kw: 5
  max_discharge_kw: 5
  min_soc: 0.1
  max_soc: 0.9
provider:
  source: "mqtt"
sensors:
  solar_topic: "a"
  price_topic: "b"
  soc_topic: "c"
runlog:
  backend: "none"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for missing broker")
	}
}
