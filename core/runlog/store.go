// Package runlog persists the history of optimization runs. The stores
// back the plan history endpoint and let operators replay how the
// optimizer reacted to past forecasts.
package runlog

import (
	"context"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// RunRecord captures one optimization run outcome.
type RunRecord struct {
	Timestamp  time.Time       `json:"timestamp"`
	Result     model.RunResult `json:"result"`
	InitialSoC float64         `json:"initial_soc"`
	Horizon    int             `json:"horizon"`
}

// RunQuery defines filters for retrieving records.
type RunQuery struct {
	Start        time.Time
	End          time.Time
	OnlyFeasible bool
	Limit        int
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// NopStore discards all records.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error { return nil }

func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) { return nil, nil }

func (NopStore) Close() error { return nil }
