package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

func testRunResult(now time.Time) model.RunResult {
	return model.RunResult{
		ID:              "run-1",
		CreatedAt:       now,
		BestFitness:     -0.8,
		BaselineFitness: 0,
		Generations:     12,
		Evaluations:     240,
		Duration:        150 * time.Millisecond,
		Feasible:        true,
		Plan: model.DispatchPlan{
			BatteryKW:    []float64{1, -1},
			SoC:          []float64{0.5, 0.75, 0.5},
			GridKW:       []float64{1, -1},
			Violations:   []float64{0, 0},
			SlotDuration: time.Hour,
		},
		Genotype: []float64{1, -1},
	}
}

func TestInfluxSink_RecordRun(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.RunEvent{Result: testRunResult(now), Time: now}

	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("optimization_run").
		AddTag("run_id", "run-1").
		AddTag("feasible", "true").
		AddTag("component", "scheduler").
		AddField("best_fitness", -0.8).
		AddField("baseline_fitness", 0.0).
		AddField("savings", 0.8).
		AddField("first_action_kw", 1.0).
		AddField("import_kwh", 1.0).
		AddField("export_kwh", 1.0).
		AddField("generations", 12).
		AddField("evaluations", 240).
		AddField("duration_ms", 150.0).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	cfg := coremetrics.Config{
		InfluxURL:    srv.URL + "/api/v2/write",
		InfluxToken:  "tok",
		InfluxOrg:    "org",
		InfluxBucket: "bucket",
	}
	sink := NewInfluxSinkWithFallback(cfg)
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatal("health endpoint was not queried")
	}
}
