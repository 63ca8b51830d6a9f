package pricing

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FilipeDoria/genetic-load-manager/core/events"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
	"github.com/FilipeDoria/genetic-load-manager/internal/eventbus"
)

// TariffServerMock exposes HTTP endpoints for injecting tariff events
// locally, standing in for a grid operator push feed.
type TariffServerMock struct {
	addr   string
	store  Intake
	bus    eventbus.EventBus
	log    logger.Logger
	srv    *http.Server
	total  *prometheus.CounterVec
	failed prometheus.Counter
}

// NewTariffServerMock creates a mock feed using the default Prometheus
// registerer.
func NewTariffServerMock(cfg Config, store Intake, bus eventbus.EventBus) *TariffServerMock {
	return NewTariffServerMockWithRegistry(cfg, store, bus, prometheus.DefaultRegisterer)
}

// NewTariffServerMockWithRegistry creates a mock feed and registers metrics
// on the provided registerer. If reg is nil the default registerer is used.
func NewTariffServerMockWithRegistry(cfg Config, store Intake, bus eventbus.EventBus, reg prometheus.Registerer) *TariffServerMock {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	log := logger.New("tariff-server-mock")

	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tariff_events_total",
		Help: "Total received tariff events",
	}, []string{"kind"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tariff_events_failed",
		Help: "Rejected tariff events",
	})

	if err := reg.Register(total); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if exist, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				total = exist
			} else {
				log.Errorf("existing collector for tariff_events_total has wrong type %T", are.ExistingCollector)
			}
		}
	}
	if err := reg.Register(failed); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if exist, ok := are.ExistingCollector.(prometheus.Counter); ok {
				failed = exist
			} else {
				log.Errorf("existing collector for tariff_events_failed has wrong type %T", are.ExistingCollector)
			}
		}
	}

	return &TariffServerMock{
		addr:   cfg.MockAddress,
		store:  store,
		bus:    bus,
		log:    log,
		total:  total,
		failed: failed,
	}
}

func (s *TariffServerMock) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tariff/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("pong")); err != nil {
			s.log.Errorf("write pong: %v", err)
		}
	})
	mux.HandleFunc("/tariff/event", s.handleEvent)
	return mux
}

func (s *TariffServerMock) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var ev TariffEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		s.failed.Inc()
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := ev.Validate(); err != nil {
		s.failed.Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.total.WithLabelValues(ev.Kind).Inc()
	s.log.Infof("accepted %s tariff x%.2f until %s", ev.Kind, ev.Multiplier, ev.EndTime.Format(time.RFC3339))
	s.store.Add(ev)
	if s.bus != nil {
		s.bus.Publish(events.TariffEvent{
			Kind:       ev.Kind,
			Start:      ev.StartTime,
			End:        ev.EndTime,
			Multiplier: ev.Multiplier,
		})
	}
	w.WriteHeader(http.StatusOK)
}

// Addr returns the listening address once Start has been called.
func (s *TariffServerMock) Addr() string { return s.addr }

// Start runs the HTTP server until the context is canceled.
func (s *TariffServerMock) Start(ctx context.Context) error {
	mux := s.routes()
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr().String()
	s.srv = &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown server: %v", err)
		}
		cancel()
	}()
	s.log.Infof("tariff mock server listening on %s", s.addr)
	err = s.srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
