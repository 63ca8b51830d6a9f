//go:build !no_containers

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/FilipeDoria/genetic-load-manager/app"
	"github.com/FilipeDoria/genetic-load-manager/config"
	"github.com/FilipeDoria/genetic-load-manager/test/util"
)

// The service is wired from a config file exactly as the CLI would do it,
// pointed at a disposable broker, and must publish its first plan there.
func TestServiceFromConfigWithBroker(t *testing.T) {
	requireDocker(t)
	ctx := context.Background()

	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto: %v", err)
	}
	defer cleanup()

	dir := t.TempDir()
	runPath := filepath.Join(dir, "runs.log")
	cfgYAML := fmt.Sprintf(`battery:
  capacity_kwh: 10
  max_charge_kw: 5
  max_discharge_kw: 5
  min_soc: 0.1
  max_soc: 0.9
genetic:
  horizon: 6
  slot_minutes: 60
  population_size: 16
  generations: 5
  workers: 1
  seed: 42
scheduler:
  interval_seconds: 60
provider:
  source: synthetic
mqtt:
  broker: %s
  client_id: e2e-service
  topic_prefix: e2e
runlog:
  backend: jsonl
  path: %s
`, broker, runPath)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Run(runCtx) }()

	obs := connectObserver(t, broker, "config-observer")
	defer obs.Disconnect(100)
	plans := make(chan paho.Message, 1)
	subscribeInto(t, obs, "e2e/plan", plans)

	select {
	case m := <-plans:
		var wire planWire
		if err := json.Unmarshal(m.Payload(), &wire); err != nil {
			t.Fatalf("decode plan: %v", err)
		}
		if len(wire.BatteryKW) != 6 {
			t.Fatalf("plan horizon %d, want 6", len(wire.BatteryKW))
		}
	case <-time.After(15 * time.Second):
		t.Fatal("service published no plan")
	}

	stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(runPath)
	if err != nil {
		t.Fatalf("run log: %v", err)
	}
	if !strings.Contains(string(data), "initial_soc") {
		t.Fatal("run log missing run record")
	}
}
