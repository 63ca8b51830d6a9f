package test

import (
	"os/exec"
	"testing"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
}

// arbitrageSnapshot is a four slot forecast where the two midday slots are
// sunny and cheap while the shoulders are expensive. The optimal battery
// schedule discharges the shoulders and recharges in the middle.
func arbitrageSnapshot() model.ForecastSnapshot {
	return model.ForecastSnapshot{
		SolarForecastKW: []float64{0, 2, 2, 0},
		PricePerKWh:     []float64{0.3, 0.1, 0.1, 0.3},
		SoC:             0.5,
		Battery: model.BatterySpec{
			CapacityKWh:    4,
			MaxChargeKW:    1,
			MaxDischargeKW: 1,
			MinSoC:         0,
			MaxSoC:         1,
		},
		SlotDuration: time.Hour,
		Timestamp:    time.Now(),
	}
}
