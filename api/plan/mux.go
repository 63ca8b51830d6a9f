package plan

import (
	"net/http"

	eco "github.com/FilipeDoria/genetic-load-manager/core/metrics/eco"
	"github.com/FilipeDoria/genetic-load-manager/core/planstore"
	"github.com/FilipeDoria/genetic-load-manager/core/runlog"
)

// MuxConfig gathers the handler dependencies. Nil stores leave the matching
// routes unmounted.
type MuxConfig struct {
	Plans          planstore.Store
	Runs           runlog.Store
	KPIs           eco.Store
	EmissionFactor float64
	APIToken       string
	Version        string
}

// NewMux assembles the HTTP API under /api/plan plus the health endpoint.
func NewMux(cfg MuxConfig) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/healthz", NewHealthHandler(cfg.Version, cfg.Plans))
	if cfg.Plans != nil {
		mux.Handle("/api/plan/latest", NewLatestHandler(cfg.Plans))
		mux.Handle("/api/plan/history", NewHistoryHandler(cfg.Plans))
	}
	if cfg.Runs != nil {
		mux.Handle("/api/plan/runs", NewRunLogHandler(cfg.Runs, cfg.APIToken))
	}
	if cfg.KPIs != nil {
		mux.Handle("/api/plan/kpis", NewKPIHandler(cfg.KPIs, cfg.EmissionFactor))
	}
	return mux
}
