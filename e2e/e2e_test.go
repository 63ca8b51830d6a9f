//go:build !no_containers

package e2e

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/FilipeDoria/genetic-load-manager/core/forecast"
	"github.com/FilipeDoria/genetic-load-manager/core/genetic"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
	"github.com/FilipeDoria/genetic-load-manager/core/planstore"
	"github.com/FilipeDoria/genetic-load-manager/core/scheduler"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
	"github.com/FilipeDoria/genetic-load-manager/infra/metrics"
	"github.com/FilipeDoria/genetic-load-manager/infra/mqtt"
	"github.com/FilipeDoria/genetic-load-manager/test/util"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "plans"
	influxToken  = "e2e-token"
)

// junitReport is a minimal representation of a JUnit XML report. The E2E
// suite writes such a report so CI systems can display the results.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

// writeJUnit writes the provided report to the given path.
func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an InfluxDB 2.7 container and returns it along with the
// base URL. Automated setup runs during startup, so the admin token is valid
// as soon as the container reports healthy.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      "e2e_bucket",
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	url := fmt.Sprintf("http://%s:%s", host, port.Port())
	return cont, url
}

// planWire mirrors the published plan payload fields checked by the suite.
type planWire struct {
	RunID       string    `json:"run_id"`
	Feasible    bool      `json:"feasible"`
	SlotSeconds int       `json:"slot_seconds"`
	BatteryKW   []float64 `json:"battery_kw"`
	SoC         []float64 `json:"soc"`
}

// arbitrageSnapshot is a four slot forecast where the midday slots are both
// sunny and cheap. The optimal plan charges through them and discharges in
// the expensive shoulder slots.
func arbitrageSnapshot() model.ForecastSnapshot {
	return model.ForecastSnapshot{
		SolarForecastKW: []float64{0, 2, 2, 0},
		PricePerKWh:     []float64{0.3, 0.1, 0.1, 0.3},
		SoC:             0.5,
		Battery: model.BatterySpec{
			CapacityKWh:    4,
			MaxChargeKW:    1,
			MaxDischargeKW: 1,
			MinSoC:         0,
			MaxSoC:         1,
		},
		SlotDuration: time.Hour,
		Timestamp:    time.Now(),
	}
}

// Test_E2E_PlanPipeline runs one full optimization cycle against live
// infrastructure: the scheduler publishes its plan to a Mosquitto broker and
// records the run in InfluxDB, both started via testcontainers-go. The test
// then reads the plan back over MQTT and the run back over Flux.
func Test_E2E_PlanPipeline(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	influxCont, influxURL := startInflux(ctx, t)
	if influxCont != nil {
		defer influxCont.Terminate(ctx) //nolint:errcheck
	}
	broker, stopBroker, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	defer stopBroker()
	t.Logf("InfluxDB started at %s", influxURL)
	t.Logf("Mosquitto started at %s", broker)

	// The init bucket is not the one the sink writes to, so SetupBucket has
	// to create it through the management API.
	cli := NewInfluxClient(influxURL, influxOrg, influxBucket, influxToken)
	defer cli.Close()
	if err := cli.SetupBucket(ctx); err != nil {
		t.Fatalf("setup bucket: %v", err)
	}

	sink := metrics.NewInfluxSink(influxURL, influxToken, influxOrg, influxBucket)
	defer sink.Close()

	pub, err := mqtt.NewPahoClient(mqtt.Config{
		Broker:      broker,
		ClientID:    "e2e-optimizer",
		TopicPrefix: "e2e",
		QoS:         map[string]byte{"plan": 1, "setpoint": 1},
	})
	if err != nil {
		t.Fatalf("connect publisher: %v", err)
	}
	defer pub.Disconnect()

	obs, err := mqtt.NewPahoClient(mqtt.Config{
		Broker:      broker,
		ClientID:    "e2e-observer",
		TopicPrefix: "e2e",
		QoS:         map[string]byte{"sensor": 1},
	})
	if err != nil {
		t.Fatalf("connect observer: %v", err)
	}
	defer obs.Disconnect()
	plans := make(chan []byte, 1)
	if err := obs.Subscribe(pub.Topic(), func(_ string, payload []byte) {
		select {
		case plans <- payload:
		default:
		}
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	gcfg := genetic.Config{
		Horizon:        4,
		SlotMinutes:    60,
		PopulationSize: 16,
		Generations:    10,
		Workers:        1,
		Seed:           11,
	}
	gcfg.SetDefaults()
	opt, err := genetic.NewOptimizer(gcfg, logger.NopLogger{})
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	provider := forecast.NewStaticProvider(arbitrageSnapshot())
	store := planstore.NewMemoryStore(4)
	sched, err := scheduler.NewScheduler(scheduler.Config{IntervalSeconds: 60},
		provider, opt, store, pub, nil, sink, nil, logger.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}

	sched.Tick(ctx)
	latest, ok := store.Latest()
	if !ok {
		t.Fatal("no plan stored after tick")
	}

	var wire planWire
	select {
	case payload := <-plans:
		if err := json.Unmarshal(payload, &wire); err != nil {
			t.Fatalf("decode plan payload: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("no plan received from broker")
	}
	if wire.RunID != latest.ID {
		t.Fatalf("broker plan run id = %s, want %s", wire.RunID, latest.ID)
	}
	if !wire.Feasible {
		t.Fatal("published plan not feasible")
	}
	if len(wire.BatteryKW) != 4 || len(wire.SoC) != 5 {
		t.Fatalf("published plan has %d actions and %d soc values", len(wire.BatteryKW), len(wire.SoC))
	}
	if wire.SlotSeconds != 3600 {
		t.Fatalf("published slot_seconds = %d, want 3600", wire.SlotSeconds)
	}

	res, err := cli.Query(ctx, fmt.Sprintf(
		`from(bucket:%q) |> range(start: -5m) |> filter(fn: (r) => r._measurement == "optimization_run")`,
		influxBucket))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer res.Close()
	rows := 0
	found := false
	for res.Next() {
		rows++
		if id, ok := res.Record().ValueByKey("run_id").(string); ok && id == latest.ID {
			found = true
		}
	}
	if err := res.Err(); err != nil {
		t.Fatalf("iterate query result: %v", err)
	}
	if rows == 0 {
		t.Fatal("no optimization_run points returned from Influx")
	}
	if !found {
		t.Fatalf("run %s not found in Influx", latest.ID)
	}
	t.Logf("Influx query returned %d points", rows)

	// Produce JUnit report
	dir := t.TempDir()
	rep := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{Name: "Test_E2E_PlanPipeline", Time: 0}}}
	if err := writeJUnit(filepath.Join(dir, "e2e.xml"), rep); err != nil {
		t.Logf("write junit: %v", err)
	}
}
