package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apiplan "github.com/FilipeDoria/genetic-load-manager/api/plan"
	"github.com/FilipeDoria/genetic-load-manager/config"
	"github.com/FilipeDoria/genetic-load-manager/core/forecast"
	"github.com/FilipeDoria/genetic-load-manager/core/genetic"
	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/FilipeDoria/genetic-load-manager/core/metrics/eco"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
	coremon "github.com/FilipeDoria/genetic-load-manager/core/monitoring"
	"github.com/FilipeDoria/genetic-load-manager/core/planstore"
	"github.com/FilipeDoria/genetic-load-manager/core/runlog"
	"github.com/FilipeDoria/genetic-load-manager/core/scheduler"
	"github.com/FilipeDoria/genetic-load-manager/infra/homeassistant"
	"github.com/FilipeDoria/genetic-load-manager/infra/kpi"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
	"github.com/FilipeDoria/genetic-load-manager/infra/metrics"
	"github.com/FilipeDoria/genetic-load-manager/infra/monitoring"
	"github.com/FilipeDoria/genetic-load-manager/infra/mqtt"
	"github.com/FilipeDoria/genetic-load-manager/internal/eventbus"
	"github.com/FilipeDoria/genetic-load-manager/pricing"
	tariffgen "github.com/FilipeDoria/genetic-load-manager/pricing/generator"
)

// Service wires the forecast provider, the optimizer and the scheduler.
type Service struct {
	Scheduler *scheduler.Scheduler
	// Version is reported by the health endpoint.
	Version string

	cfg     *config.Config
	bus     eventbus.EventBus
	log     logger.Logger
	mqttCli *mqtt.PahoClient
	plans   planstore.Store
	runs    runlog.Store
	kpis    eco.Store
	tariffs *pricing.EventStore
	sink    coremetrics.MetricsSink
	mon     coremon.Monitor
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	slot := cfg.Genetic.SlotDuration()

	var client *mqtt.PahoClient
	if cfg.MQTT.Broker != "" {
		client, err = mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
	}

	provider, err := NewForecastProvider(cfg, client, slot)
	if err != nil {
		return nil, err
	}

	var tariffs *pricing.EventStore
	if cfg.Pricing.Enabled() {
		tariffs = pricing.NewEventStore()
		provider = pricing.NewOverlay(provider, tariffs, logger.New("tariff-overlay"))
	}

	opt, err := genetic.NewOptimizer(cfg.Genetic, logger.New("optimizer"))
	if err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}

	plans := planstore.NewMemoryStore(cfg.Scheduler.HistorySize)
	runs, err := NewRunLog(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}

	kpis, err := newKPIStore(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("kpi store: %w", err)
	}
	// Daily KPIs are folded on every run, whether or not the gauges are
	// served anywhere.
	sinks := []coremetrics.MetricsSink{
		metrics.NewEcoSink(kpis, cfg.Metrics.EmissionFactor, prometheus.DefaultRegisterer),
	}
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()

	var pub scheduler.Publisher
	if client != nil {
		pub = client
	} else {
		logg.Warnf("mqtt broker not configured, plans are stored but not published")
	}

	sched, err := scheduler.NewScheduler(cfg.Scheduler, provider, opt, plans, pub, runs, sink, bus, logg, genetic.NewAdaptiveTuner(opt))
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	return &Service{
		Scheduler: sched,
		Version:   "dev",
		cfg:       cfg,
		bus:       bus,
		log:       logg,
		mqttCli:   client,
		plans:     plans,
		runs:      runs,
		kpis:      kpis,
		tariffs:   tariffs,
		sink:      sink,
		mon:       mon,
	}, nil
}

// NewForecastProvider builds the forecast source selected in the config.
// client is only required for the mqtt source and may be nil otherwise.
func NewForecastProvider(cfg *config.Config, client *mqtt.PahoClient, slot time.Duration) (forecast.SnapshotProvider, error) {
	switch cfg.Provider.Source {
	case config.SourceMQTT:
		if client == nil {
			return nil, fmt.Errorf("mqtt broker is required for the mqtt forecast source")
		}
		src, err := mqtt.NewSnapshotSource(client, cfg.Sensors, cfg.Battery, slot)
		if err != nil {
			return nil, fmt.Errorf("sensor source: %w", err)
		}
		return src, nil
	case config.SourceHomeAssistant:
		p, err := homeassistant.NewProvider(cfg.HomeAssistant, cfg.Battery, slot)
		if err != nil {
			return nil, fmt.Errorf("homeassistant provider: %w", err)
		}
		return p, nil
	default:
		battery := cfg.Battery
		if err := battery.Validate(); err != nil {
			// Demo battery for synthetic runs without a configured pack.
			battery = model.BatterySpec{CapacityKWh: 10, MaxChargeKW: 5, MaxDischargeKW: 5, MinSoC: 0.1, MaxSoC: 0.9}
		}
		return forecast.NewSyntheticProvider(cfg.Genetic.Horizon, slot, battery), nil
	}
}

// NewRunLog builds the run log backend selected in the config. A nil store
// with nil error means run logging is disabled.
func NewRunLog(cfg config.RunLogConfig) (runlog.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return runlog.NewSQLiteStore(cfg.Path)
	case "jsonl":
		if cfg.MaxSizeMB > 0 {
			return runlog.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return runlog.NewJSONLStore(cfg.Path)
	default:
		return nil, nil
	}
}

func newKPIStore(cfg coremetrics.Config) (eco.Store, error) {
	switch cfg.KPIBackend {
	case "sqlite":
		return kpi.NewSQLiteStore(cfg.KPIPath)
	default:
		return eco.NewMemoryStore(), nil
	}
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.API.Enabled {
		go s.serveAPI(ctx)
	}
	if s.mqttCli != nil {
		if err := s.mqttCli.AnnounceDiscovery(); err != nil {
			s.log.Warnf("discovery announce: %v", err)
		}
	}
	s.startTariffFeed(ctx)
	return s.Scheduler.Run(ctx)
}

// startTariffFeed launches the configured tariff event source. Feed
// failures only disable price adjustments, never the scheduler.
func (s *Service) startTariffFeed(ctx context.Context) {
	if s.tariffs == nil {
		return
	}
	switch s.cfg.Pricing.Mode {
	case "mock":
		srv := pricing.NewTariffServerMock(s.cfg.Pricing, s.tariffs, s.bus)
		go func() {
			if err := srv.Start(ctx); err != nil {
				s.log.Errorf("tariff mock server: %v", err)
			}
		}()
	case "generator":
		gen := tariffgen.New(s.cfg.Pricing.Generator, s.tariffs, s.bus)
		go gen.Start(ctx)
	}
}

func (s *Service) serveAPI(ctx context.Context) {
	mux := apiplan.NewMux(apiplan.MuxConfig{
		Plans:          s.plans,
		Runs:           s.runs,
		KPIs:           s.kpis,
		EmissionFactor: s.cfg.Metrics.EmissionFactor,
		APIToken:       s.cfg.API.Token,
		Version:        s.Version,
	})
	srv := &http.Server{Addr: s.cfg.API.Address, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown api server: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", s.cfg.API.Address)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Errorf("api server: %v", err)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.mqttCli != nil {
		s.mqttCli.Disconnect()
	}
	var err error
	if s.runs != nil {
		err = s.runs.Close()
	}
	if c, ok := s.kpis.(interface{ Close() error }); ok {
		if kerr := c.Close(); kerr != nil && err == nil {
			err = kerr
		}
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if s.mon != nil {
		s.mon.Flush(2 * time.Second)
	}
	return err
}
