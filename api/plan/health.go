package plan

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/planstore"
)

// NewHealthHandler reports liveness plus the identity of the last published
// plan via GET /healthz.
func NewHealthHandler(version string, store planstore.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := struct {
			Status    string `json:"status"`
			Version   string `json:"version,omitempty"`
			HasPlan   bool   `json:"has_plan"`
			LastRunID string `json:"last_run_id,omitempty"`
			LastRunAt string `json:"last_run_at,omitempty"`
		}{Status: "ok", Version: version}
		if store != nil {
			if res, ok := store.Latest(); ok {
				out.HasPlan = true
				out.LastRunID = res.ID
				out.LastRunAt = res.CreatedAt.Format(time.RFC3339)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
