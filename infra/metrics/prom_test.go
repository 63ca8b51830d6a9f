package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
)

func TestPromSinkRecordsRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	ps := sink.(*PromSink)

	now := time.Now()
	ev := coremetrics.RunEvent{Result: testRunResult(now), Time: now}
	if err := ps.RecordRun(ev); err != nil {
		t.Fatalf("record run: %v", err)
	}

	if got := testutil.ToFloat64(ps.runs.WithLabelValues("true")); got != 1 {
		t.Fatalf("plan_runs_total{feasible=true} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ps.savings); got != 0.8 {
		t.Fatalf("plan_last_savings = %v, want 0.8", got)
	}
	if got := testutil.ToFloat64(ps.firstAction); got != 1 {
		t.Fatalf("plan_first_action_kw = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ps.exportKWh); got != 1 {
		t.Fatalf("plan_export_kwh = %v, want 1", got)
	}
}

func TestPromSinkRecordsSkipsAndPublishes(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	ps := sink.(*PromSink)

	if err := ps.RecordTickSkip(coremetrics.TickSkipEvent{Reason: "stale_snapshot"}); err != nil {
		t.Fatalf("record skip: %v", err)
	}
	if err := ps.RecordPublish(coremetrics.PublishEvent{Topic: "home/plan"}); err != nil {
		t.Fatalf("record publish: %v", err)
	}

	if got := testutil.ToFloat64(ps.tickSkips.WithLabelValues("stale_snapshot")); got != 1 {
		t.Fatalf("scheduler_tick_skips_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ps.publishes.WithLabelValues("home/plan")); got != 1 {
		t.Fatalf("plan_publish_total = %v, want 1", got)
	}
}

func TestPromSinkRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}
