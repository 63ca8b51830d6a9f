package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// ErrStaleSnapshot indicates that a snapshot is older than the scheduler
// tolerates. Callers should skip the run and keep the previous plan.
var ErrStaleSnapshot = errors.New("stale forecast snapshot")

// SnapshotProvider assembles the optimizer inputs for the next run.
type SnapshotProvider interface {
	// Snapshot returns the current forecast view. Implementations must
	// return a copy the caller may mutate freely.
	Snapshot(ctx context.Context) (model.ForecastSnapshot, error)
}

// CheckFresh returns ErrStaleSnapshot if the snapshot timestamp is older
// than tolerance relative to now. A zero tolerance disables the check.
// A zero timestamp is always considered stale when the check is enabled.
func CheckFresh(snap model.ForecastSnapshot, now time.Time, tolerance time.Duration) error {
	if tolerance <= 0 {
		return nil
	}
	if snap.Timestamp.IsZero() {
		return fmt.Errorf("%w: snapshot has no timestamp", ErrStaleSnapshot)
	}
	if age := now.Sub(snap.Timestamp); age > tolerance {
		return fmt.Errorf("%w: age %s exceeds %s", ErrStaleSnapshot, age.Round(time.Second), tolerance)
	}
	return nil
}
