package metrics

import (
	core "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	eco "github.com/FilipeDoria/genetic-load-manager/core/metrics/eco"
	"github.com/prometheus/client_golang/prometheus"
)

// EcoSink records optimization runs as daily ecological KPIs.
type EcoSink struct {
	store    eco.Store
	factor   float64
	exported *prometheus.GaugeVec
	ratio    *prometheus.GaugeVec
	co2      *prometheus.GaugeVec
	saved    *prometheus.GaugeVec
}

// NewEcoSink creates a sink with Prometheus gauges registered on reg.
func NewEcoSink(store eco.Store, factor float64, reg prometheus.Registerer) *EcoSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	exported := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "site_exported_energy_kwh",
		Help: "Daily energy exported to the grid",
	}, []string{"day"})
	ratio := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "site_energy_ratio",
		Help: "Daily ratio of exported to imported energy",
	}, []string{"day"})
	co2 := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "site_co2_avoided_grams",
		Help: "Daily CO2 avoided through exported energy",
	}, []string{"day"})
	saved := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "site_saved_cost",
		Help: "Daily cost improvement over the idle baseline",
	}, []string{"day"})
	return &EcoSink{
		store:    store,
		factor:   factor,
		exported: registerGaugeVec(reg, exported),
		ratio:    registerGaugeVec(reg, ratio),
		co2:      registerGaugeVec(reg, co2),
		saved:    registerGaugeVec(reg, saved),
	}
}

// registerGaugeVec registers v, reusing the existing collector when another
// sink instance already claimed the name.
func registerGaugeVec(reg prometheus.Registerer, v *prometheus.GaugeVec) *prometheus.GaugeVec {
	if err := reg.Register(v); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.GaugeVec)
		}
	}
	return v
}

// RecordRun folds the run into the daily KPIs.
func (s *EcoSink) RecordRun(ev core.RunEvent) error {
	rec := eco.FromResult(ev.Result)
	if err := s.store.Add(rec); err != nil {
		return err
	}
	dayStr := eco.Day(rec.Date).Format("2006-01-02")
	records, _ := s.store.Query(rec.Date, rec.Date)
	if len(records) > 0 {
		rr := records[0]
		s.exported.WithLabelValues(dayStr).Set(rr.ExportedKWh)
		s.ratio.WithLabelValues(dayStr).Set(rr.EnergyRatio())
		s.co2.WithLabelValues(dayStr).Set(rr.CO2Avoided(s.factor))
		s.saved.WithLabelValues(dayStr).Set(rr.SavedCost)
	}
	return nil
}
