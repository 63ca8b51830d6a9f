// Package ecokpi rebuilds daily energy KPIs from the run log, for example
// after switching the KPI backend or losing the database file.
package ecokpi

import (
	"context"

	eco "github.com/FilipeDoria/genetic-load-manager/core/metrics/eco"
	"github.com/FilipeDoria/genetic-load-manager/core/runlog"
)

// Backfill folds the logged runs matching q into the KPI store and returns
// the number of runs processed.
func Backfill(ctx context.Context, runs runlog.Store, kpis eco.Store, q runlog.RunQuery) (int, error) {
	records, err := runs.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	for i, rec := range records {
		if err := kpis.Add(eco.FromResult(rec.Result)); err != nil {
			return i, err
		}
	}
	return len(records), nil
}
