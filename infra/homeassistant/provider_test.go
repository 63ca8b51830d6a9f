package homeassistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

func haServer(t *testing.T) *httptest.Server {
	t.Helper()
	states := map[string]string{
		"sensor.pv_forecast":    `{"entity_id":"sensor.pv_forecast","state":"2.0","attributes":{"forecast":[0,2,2,0]},"last_updated":"2024-05-01T12:00:00Z"}`,
		"sensor.price_forecast": `{"entity_id":"sensor.price_forecast","state":"0.3","attributes":{"forecast":[0.3,0.1,0.1,0.3]},"last_updated":"2024-05-01T11:58:00Z"}`,
		"sensor.battery_soc":    `{"entity_id":"sensor.battery_soc","state":"55","attributes":{},"last_updated":"2024-05-01T12:00:00Z"}`,
		"sensor.house_load":     `{"entity_id":"sensor.house_load","state":"0.4","attributes":{"forecast":[0.4,0.4,0.4,0.4]},"last_updated":"2024-05-01T12:01:00Z"}`,
		"sensor.broken":         `{"entity_id":"sensor.broken","state":"unavailable","attributes":{},"last_updated":"2024-05-01T12:00:00Z"}`,
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		entity := strings.TrimPrefix(r.URL.Path, "/api/states/")
		body, ok := states[entity]
		if !ok {
			http.Error(w, `{"message":"Entity not found."}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write state: %v", err)
		}
	}))
}

func testConfig(url string) Config {
	return Config{
		BaseURL:     url,
		Token:       "token123",
		SolarEntity: "sensor.pv_forecast",
		PriceEntity: "sensor.price_forecast",
		SoCEntity:   "sensor.battery_soc",
		LoadEntity:  "sensor.house_load",
	}
}

func testBattery() model.BatterySpec {
	return model.BatterySpec{CapacityKWh: 10, MaxChargeKW: 5, MaxDischargeKW: 5, MinSoC: 0.1, MaxSoC: 0.9}
}

func TestProviderSnapshot(t *testing.T) {
	srv := haServer(t)
	defer srv.Close()
	p, err := NewProvider(testConfig(srv.URL), testBattery(), time.Hour)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Horizon() != 4 {
		t.Fatalf("horizon %d, want 4", snap.Horizon())
	}
	if snap.SoC != 0.55 {
		t.Fatalf("soc %v, want 0.55", snap.SoC)
	}
	if snap.SolarForecastKW[1] != 2 || snap.PricePerKWh[0] != 0.3 || snap.LoadAt(2) != 0.4 {
		t.Fatalf("vectors wrong: %+v", snap)
	}
	want := time.Date(2024, 5, 1, 11, 58, 0, 0, time.UTC)
	if !snap.Timestamp.Equal(want) {
		t.Fatalf("timestamp %v, want oldest entity update %v", snap.Timestamp, want)
	}
	if err := snap.Validate(4); err != nil {
		t.Fatalf("assembled snapshot invalid: %v", err)
	}
}

func TestProviderWithoutLoadEntity(t *testing.T) {
	srv := haServer(t)
	defer srv.Close()
	cfg := testConfig(srv.URL)
	cfg.LoadEntity = ""
	p, err := NewProvider(cfg, testBattery(), time.Hour)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.BaseLoadKW != nil {
		t.Fatalf("expected nil base load, got %v", snap.BaseLoadKW)
	}
}

func TestProviderBadToken(t *testing.T) {
	srv := haServer(t)
	defer srv.Close()
	cfg := testConfig(srv.URL)
	cfg.Token = "wrong"
	p, err := NewProvider(cfg, testBattery(), time.Hour)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	if _, err := p.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected auth error")
	}
}

func TestProviderUnknownEntity(t *testing.T) {
	srv := haServer(t)
	defer srv.Close()
	cfg := testConfig(srv.URL)
	cfg.SolarEntity = "sensor.missing"
	p, err := NewProvider(cfg, testBattery(), time.Hour)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	if _, err := p.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected error for unknown entity")
	}
}

func TestProviderNonNumericState(t *testing.T) {
	srv := haServer(t)
	defer srv.Close()
	cfg := testConfig(srv.URL)
	cfg.SoCEntity = "sensor.broken"
	p, err := NewProvider(cfg, testBattery(), time.Hour)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	_, err = p.Snapshot(context.Background())
	if err == nil || !strings.Contains(err.Error(), "not numeric") {
		t.Fatalf("expected non numeric error, got %v", err)
	}
}

func TestProviderMissingForecastAttribute(t *testing.T) {
	srv := haServer(t)
	defer srv.Close()
	cfg := testConfig(srv.URL)
	cfg.SolarEntity = "sensor.battery_soc"
	p, err := NewProvider(cfg, testBattery(), time.Hour)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	_, err = p.Snapshot(context.Background())
	if err == nil || !strings.Contains(err.Error(), "forecast") {
		t.Fatalf("expected attribute error, got %v", err)
	}
}

func TestProviderConfig(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	if cfg.ForecastAttribute != "forecast" || cfg.SoCScale != 0.01 || cfg.TimeoutSeconds != 10 {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := NewProvider(Config{}, testBattery(), time.Hour); err == nil {
		t.Fatalf("expected constructor error")
	}
	if _, err := NewProvider(testConfig("http://localhost"), testBattery(), 0); err == nil {
		t.Fatalf("expected slot duration error")
	}
}
