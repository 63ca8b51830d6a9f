package kpi

import (
	"database/sql"
	"fmt"
	"time"

	eco "github.com/FilipeDoria/genetic-load-manager/core/metrics/eco"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists daily energy KPIs in a SQLite database so they
// survive service restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS eco_kpi (
        day INTEGER PRIMARY KEY,
        exported REAL,
        imported REAL,
        throughput REAL,
        saved_cost REAL
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add folds the record into its day row.
func (s *SQLiteStore) Add(r eco.Record) error {
	d := eco.Day(r.Date)
	_, err := s.db.Exec(`INSERT INTO eco_kpi (day, exported, imported, throughput, saved_cost)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(day) DO UPDATE SET
            exported = exported + excluded.exported,
            imported = imported + excluded.imported,
            throughput = throughput + excluded.throughput,
            saved_cost = saved_cost + excluded.saved_cost`,
		d.Unix(), r.ExportedKWh, r.ImportedKWh, r.ThroughputKWh, r.SavedCost)
	return err
}

// Query returns day records in the range [start, end] in chronological
// order.
func (s *SQLiteStore) Query(start, end time.Time) ([]eco.Record, error) {
	start = eco.Day(start)
	end = eco.Day(end)
	rows, err := s.db.Query(`SELECT day, exported, imported, throughput, saved_cost
        FROM eco_kpi WHERE day >= ? AND day <= ? ORDER BY day`,
		start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []eco.Record
	for rows.Next() {
		var ts int64
		var exp, imp, thr, saved float64
		if err := rows.Scan(&ts, &exp, &imp, &thr, &saved); err != nil {
			return nil, err
		}
		res = append(res, eco.Record{
			Date:          time.Unix(ts, 0).UTC(),
			ExportedKWh:   exp,
			ImportedKWh:   imp,
			ThroughputKWh: thr,
			SavedCost:     saved,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
