package metrics

import (
	"strconv"

	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records optimization events in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	savings     prometheus.Gauge
	firstAction prometheus.Gauge
	importKWh   prometheus.Gauge
	exportKWh   prometheus.Gauge
	tickSkips   *prometheus.CounterVec
	publishes   *prometheus.CounterVec
}

// NewPromSink registers plan metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	_ = cfg
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_runs_total",
		Help: "Total number of published optimization runs",
	}, []string{"feasible"})
	savings := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plan_last_savings",
		Help: "Cost improvement of the latest plan over the idle baseline",
	})
	firstAction := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plan_first_action_kw",
		Help: "Battery setpoint of the latest plan for the current slot",
	})
	importKWh := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plan_import_kwh",
		Help: "Grid import energy of the latest plan over its horizon",
	})
	exportKWh := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plan_export_kwh",
		Help: "Grid export energy of the latest plan over its horizon",
	})
	tickSkips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_tick_skips_total",
		Help: "Scheduler ticks that produced no new plan",
	}, []string{"reason"})
	publishes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_publish_total",
		Help: "Plans delivered to downstream consumers",
	}, []string{"topic"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(savings); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			savings = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(firstAction); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			firstAction = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(importKWh); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			importKWh = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(exportKWh); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			exportKWh = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(tickSkips); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			tickSkips = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(publishes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			publishes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		runs:        runs,
		savings:     savings,
		firstAction: firstAction,
		importKWh:   importKWh,
		exportKWh:   exportKWh,
		tickSkips:   tickSkips,
		publishes:   publishes,
	}, nil
}

// RecordRun updates the counters and gauges for a completed run.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	res := ev.Result
	s.runs.WithLabelValues(strconv.FormatBool(res.Feasible)).Inc()
	s.savings.Set(res.Savings())
	s.firstAction.Set(res.Plan.FirstActionKW())
	s.importKWh.Set(res.Plan.ImportKWh())
	s.exportKWh.Set(res.Plan.ExportKWh())
	return nil
}

// RecordTickSkip counts a skipped scheduler tick by reason.
func (s *PromSink) RecordTickSkip(ev coremetrics.TickSkipEvent) error {
	s.tickSkips.WithLabelValues(ev.Reason).Inc()
	return nil
}

// RecordPublish counts a plan delivery by topic.
func (s *PromSink) RecordPublish(ev coremetrics.PublishEvent) error {
	s.publishes.WithLabelValues(ev.Topic).Inc()
	return nil
}
