package kpi

import (
	"path/filepath"
	"testing"
	"time"

	eco "github.com/FilipeDoria/genetic-load-manager/core/metrics/eco"
)

func TestSQLiteStore_AggregatesByDay(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kpi.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if err := store.Add(eco.Record{Date: day, ExportedKWh: 2, ImportedKWh: 1, ThroughputKWh: 3, SavedCost: 0.4}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(eco.Record{Date: day.Add(6 * time.Hour), ExportedKWh: 1, ImportedKWh: 0.5, ThroughputKWh: 1, SavedCost: 0.1}); err != nil {
		t.Fatalf("add2: %v", err)
	}

	out, err := store.Query(day, day)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 day record, got %d", len(out))
	}
	rec := out[0]
	if rec.ExportedKWh != 3 || rec.ImportedKWh != 1.5 || rec.ThroughputKWh != 4 {
		t.Fatalf("aggregation wrong: %+v", rec)
	}
	if !rec.Date.Equal(eco.Day(day)) {
		t.Fatalf("date not aligned to day: %v", rec.Date)
	}
}

func TestSQLiteStore_QueryWindow(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kpi.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		day := base.AddDate(0, 0, i)
		if err := store.Add(eco.Record{Date: day, ExportedKWh: float64(i)}); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	out, err := store.Query(base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 days in window, got %d", len(out))
	}
	if !out[0].Date.Before(out[1].Date) {
		t.Fatalf("records not in chronological order")
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpi.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Add(eco.Record{Date: day, ExportedKWh: 2, SavedCost: 0.2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	out, err := reopened.Query(day, day)
	if err != nil || len(out) != 1 {
		t.Fatalf("query after reopen: %v len=%d", err, len(out))
	}
	if out[0].ExportedKWh != 2 || out[0].SavedCost != 0.2 {
		t.Fatalf("record did not survive reopen: %+v", out[0])
	}
}
