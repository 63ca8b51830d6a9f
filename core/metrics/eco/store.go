package eco

import "time"

// Store persists daily energy KPI records. Implementations aggregate by
// calendar day, so adding two records for the same day folds them.
type Store interface {
	Add(Record) error
	Query(start, end time.Time) ([]Record, error)
}

// Day truncates t to the start of its day in UTC. All stores key on it.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
