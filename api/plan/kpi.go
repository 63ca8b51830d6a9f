package plan

import (
	"encoding/json"
	"net/http"
	"time"

	eco "github.com/FilipeDoria/genetic-load-manager/core/metrics/eco"
)

// NewKPIHandler exposes daily energy KPIs via GET /api/plan/kpis.
func NewKPIHandler(store eco.Store, factor float64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		start, _ := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		end, _ := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
		if end.IsZero() {
			end = time.Now()
		}
		recs, err := store.Query(start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		type out struct {
			Date        string  `json:"date"`
			ExportedKWh float64 `json:"exported_kwh"`
			ImportedKWh float64 `json:"imported_kwh"`
			CO2Avoided  float64 `json:"co2_avoided"`
			EnergyRatio float64 `json:"energy_ratio"`
			SavedCost   float64 `json:"saved_cost"`
		}
		outSlice := make([]out, len(recs))
		for i, r := range recs {
			outSlice[i] = out{
				Date:        r.Date.Format("2006-01-02"),
				ExportedKWh: r.ExportedKWh,
				ImportedKWh: r.ImportedKWh,
				CO2Avoided:  r.CO2Avoided(factor),
				EnergyRatio: r.EnergyRatio(),
				SavedCost:   r.SavedCost,
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(outSlice)
	})
}
