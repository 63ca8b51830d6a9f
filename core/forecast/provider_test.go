package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

func TestCheckFreshZeroToleranceSkipsCheck(t *testing.T) {
	snap := model.ForecastSnapshot{}
	if err := CheckFresh(snap, time.Now(), 0); err != nil {
		t.Fatalf("expected nil with zero tolerance, got %v", err)
	}
}

func TestCheckFreshAcceptsRecentSnapshot(t *testing.T) {
	now := time.Now()
	snap := model.ForecastSnapshot{Timestamp: now.Add(-2 * time.Minute)}
	if err := CheckFresh(snap, now, 10*time.Minute); err != nil {
		t.Fatalf("expected fresh snapshot, got %v", err)
	}
}

func TestCheckFreshRejectsOldSnapshot(t *testing.T) {
	now := time.Now()
	snap := model.ForecastSnapshot{Timestamp: now.Add(-20 * time.Minute)}
	err := CheckFresh(snap, now, 10*time.Minute)
	if !errors.Is(err, ErrStaleSnapshot) {
		t.Fatalf("expected ErrStaleSnapshot, got %v", err)
	}
}

func TestCheckFreshRejectsZeroTimestamp(t *testing.T) {
	err := CheckFresh(model.ForecastSnapshot{}, time.Now(), time.Minute)
	if !errors.Is(err, ErrStaleSnapshot) {
		t.Fatalf("expected ErrStaleSnapshot, got %v", err)
	}
}
