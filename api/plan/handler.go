package plan

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
	"github.com/FilipeDoria/genetic-load-manager/core/planstore"
)

// NewLatestHandler returns an HTTP handler exposing the current plan via
// GET /api/plan/latest.
func NewLatestHandler(store planstore.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, ok := store.Latest()
		if !ok {
			http.Error(w, "no plan published yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewHistoryHandler returns an HTTP handler exposing recent plans via
// GET /api/plan/history?n=10, newest first.
func NewHistoryHandler(store planstore.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		n := 0
		if s := r.URL.Query().Get("n"); s != "" {
			if v, err := strconv.Atoi(s); err == nil {
				n = v
			}
		}
		records := store.History(n)
		if records == nil {
			records = []model.RunResult{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
