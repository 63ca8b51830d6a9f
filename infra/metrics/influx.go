package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
)

// InfluxSink writes optimization events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run outcome as a line protocol point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res := ev.Result
	p := write.NewPointWithMeasurement("optimization_run").
		AddTag("run_id", res.ID).
		AddTag("feasible", strconv.FormatBool(res.Feasible)).
		AddTag("component", component(ev.Component)).
		AddField("best_fitness", round3(res.BestFitness)).
		AddField("baseline_fitness", round3(res.BaselineFitness)).
		AddField("savings", round3(res.Savings())).
		AddField("first_action_kw", round3(res.Plan.FirstActionKW())).
		AddField("import_kwh", round3(res.Plan.ImportKWh())).
		AddField("export_kwh", round3(res.Plan.ExportKWh())).
		AddField("generations", res.Generations).
		AddField("evaluations", res.Evaluations).
		AddField("duration_ms", round3(res.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTickSkip persists a skipped scheduler tick.
func (s *InfluxSink) RecordTickSkip(ev coremetrics.TickSkipEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("scheduler_tick_skip").
		AddTag("reason", ev.Reason).
		AddTag("component", component(ev.Component)).
		AddField("count", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPublish persists a plan delivery event.
func (s *InfluxSink) RecordPublish(ev coremetrics.PublishEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_publish").
		AddTag("topic", ev.Topic).
		AddTag("component", "publisher").
		AddField("run_id", ev.RunID).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSnapshot persists the forecast inputs consumed by a run.
func (s *InfluxSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap := ev.Snapshot
	p := write.NewPointWithMeasurement("forecast_snapshot").
		AddTag("component", component(ev.Component)).
		AddField("soc", round3(snap.SoC)).
		AddField("horizon", snap.Horizon()).
		SetTime(ev.Time)
	if len(snap.PricePerKWh) > 0 {
		p = p.AddField("first_price", round3(snap.PricePerKWh[0]))
	}
	if len(snap.SolarForecastKW) > 0 {
		p = p.AddField("first_solar_kw", round3(snap.SolarForecastKW[0]))
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying InfluxDB client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func component(c string) string {
	if c == "" {
		return "scheduler"
	}
	return c
}
