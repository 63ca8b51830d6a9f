package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

func testBattery() model.BatterySpec {
	return model.BatterySpec{CapacityKWh: 10, MaxChargeKW: 3, MaxDischargeKW: 3}
}

func TestSyntheticSnapshotShape(t *testing.T) {
	p := NewSyntheticProvider(24, time.Hour, testBattery())
	noon := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	p.Now = func() time.Time { return noon }

	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if err := snap.Validate(24); err != nil {
		t.Fatalf("synthetic snapshot failed validation: %v", err)
	}
	if !snap.Timestamp.Equal(noon) {
		t.Fatalf("timestamp = %v, want %v", snap.Timestamp, noon)
	}
	if snap.SolarForecastKW[0] <= 0 {
		t.Fatalf("expected production at midday, got %v", snap.SolarForecastKW[0])
	}
}

func TestSyntheticNightHasNoSolar(t *testing.T) {
	p := NewSyntheticProvider(4, time.Hour, testBattery())
	p.Now = func() time.Time { return time.Date(2026, 6, 1, 22, 0, 0, 0, time.UTC) }

	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for i, kw := range snap.SolarForecastKW {
		if kw != 0 {
			t.Fatalf("slot %d: expected no production at night, got %v", i, kw)
		}
	}
}

func TestSyntheticEveningPeak(t *testing.T) {
	p := NewSyntheticProvider(2, time.Hour, testBattery())
	p.Now = func() time.Time { return time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC) }

	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.PricePerKWh[0] != p.PeakPrice {
		t.Fatalf("evening price = %v, want peak %v", snap.PricePerKWh[0], p.PeakPrice)
	}
	if snap.BaseLoadKW[0] <= p.BaseLoadKW {
		t.Fatalf("expected evening load bump, got %v", snap.BaseLoadKW[0])
	}
	if snap.PricePerKWh[0] <= p.OffPeakPrice {
		t.Fatalf("peak price should exceed off-peak, got %v", snap.PricePerKWh[0])
	}
}
