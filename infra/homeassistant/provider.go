// Package homeassistant pulls forecast inputs from a Home Assistant
// instance over its REST API. Vector entities such as solar and price
// forecasts are read from a list attribute, scalar entities such as the
// battery state of charge from the entity state.
package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/auth"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
)

// Config locates the Home Assistant instance and the entities holding the
// forecast inputs. The load entity is optional.
type Config struct {
	BaseURL     string `json:"base_url" yaml:"base_url"`
	Token       string `json:"token" yaml:"token"`
	SolarEntity string `json:"solar_entity" yaml:"solar_entity"`
	PriceEntity string `json:"price_entity" yaml:"price_entity"`
	SoCEntity   string `json:"soc_entity" yaml:"soc_entity"`
	LoadEntity  string `json:"load_entity" yaml:"load_entity"`
	// ForecastAttribute names the attribute carrying per-slot vectors.
	ForecastAttribute string `json:"forecast_attribute" yaml:"forecast_attribute"`
	// SoCScale converts the reported state of charge to a fraction. Home
	// Assistant battery sensors report percent, hence the 0.01 default.
	SoCScale       float64 `json:"soc_scale" yaml:"soc_scale"`
	TimeoutSeconds int     `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SetDefaults fills optional fields with their defaults.
func (c *Config) SetDefaults() {
	if c.ForecastAttribute == "" {
		c.ForecastAttribute = "forecast"
	}
	if c.SoCScale == 0 {
		c.SoCScale = 0.01
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks that the instance and the required entities are configured.
func (c Config) Validate() error {
	if c.BaseURL == "" || c.Token == "" {
		return fmt.Errorf("homeassistant: base_url and token are required")
	}
	if c.SolarEntity == "" || c.PriceEntity == "" || c.SoCEntity == "" {
		return fmt.Errorf("homeassistant: solar_entity, price_entity and soc_entity are required")
	}
	return nil
}

// Provider fetches entity states on demand and assembles them into forecast
// snapshots.
type Provider struct {
	cfg     Config
	battery model.BatterySpec
	slot    time.Duration
	authz   auth.HeaderSetter
	client  *http.Client
	log     logger.Logger
}

// NewProvider builds a provider for the configured Home Assistant instance.
func NewProvider(cfg Config, battery model.BatterySpec, slot time.Duration) (*Provider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if slot <= 0 {
		return nil, fmt.Errorf("homeassistant: slot duration must be positive")
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Provider{
		cfg:     cfg,
		battery: battery,
		slot:    slot,
		authz:   auth.StaticToken(cfg.Token),
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:     logger.New("homeassistant"),
	}, nil
}

// stateResponse mirrors the /api/states/<entity_id> payload.
type stateResponse struct {
	EntityID    string                     `json:"entity_id"`
	State       string                     `json:"state"`
	Attributes  map[string]json.RawMessage `json:"attributes"`
	LastUpdated time.Time                  `json:"last_updated"`
}

func (p *Provider) fetchState(ctx context.Context, entity string) (stateResponse, error) {
	var state stateResponse
	url := p.cfg.BaseURL + "/api/states/" + entity
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return state, fmt.Errorf("failed to create request: %w", err)
	}
	if err := p.authz.SetAuthHeader(req); err != nil {
		return state, fmt.Errorf("failed to set auth header: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return state, fmt.Errorf("failed to fetch %s: %w", entity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return state, fmt.Errorf("unexpected status code for %s: %d, body: %s", entity, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return state, fmt.Errorf("failed to decode %s: %w", entity, err)
	}
	return state, nil
}

func (p *Provider) vector(ctx context.Context, entity string) ([]float64, time.Time, error) {
	state, err := p.fetchState(ctx, entity)
	if err != nil {
		return nil, time.Time{}, err
	}
	raw, ok := state.Attributes[p.cfg.ForecastAttribute]
	if !ok {
		return nil, time.Time{}, fmt.Errorf("entity %s has no %q attribute", entity, p.cfg.ForecastAttribute)
	}
	var values []float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, time.Time{}, fmt.Errorf("entity %s attribute %q: %w", entity, p.cfg.ForecastAttribute, err)
	}
	return values, state.LastUpdated, nil
}

func (p *Provider) scalar(ctx context.Context, entity string) (float64, time.Time, error) {
	state, err := p.fetchState(ctx, entity)
	if err != nil {
		return 0, time.Time{}, err
	}
	v, err := strconv.ParseFloat(state.State, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("entity %s state %q is not numeric", entity, state.State)
	}
	return v, state.LastUpdated, nil
}

// Snapshot fetches all configured entities and assembles a forecast snapshot.
// The snapshot timestamp is the oldest of the entity update times, so one
// stalled integration marks the whole snapshot stale.
func (p *Provider) Snapshot(ctx context.Context) (model.ForecastSnapshot, error) {
	solar, solarAt, err := p.vector(ctx, p.cfg.SolarEntity)
	if err != nil {
		return model.ForecastSnapshot{}, err
	}
	price, priceAt, err := p.vector(ctx, p.cfg.PriceEntity)
	if err != nil {
		return model.ForecastSnapshot{}, err
	}
	soc, socAt, err := p.scalar(ctx, p.cfg.SoCEntity)
	if err != nil {
		return model.ForecastSnapshot{}, err
	}

	snap := model.ForecastSnapshot{
		SolarForecastKW: solar,
		PricePerKWh:     price,
		SoC:             soc * p.cfg.SoCScale,
		Battery:         p.battery,
		SlotDuration:    p.slot,
		Timestamp:       oldest(solarAt, priceAt, socAt),
	}
	if p.cfg.LoadEntity != "" {
		load, loadAt, err := p.vector(ctx, p.cfg.LoadEntity)
		if err != nil {
			return model.ForecastSnapshot{}, err
		}
		snap.BaseLoadKW = load
		snap.Timestamp = oldest(snap.Timestamp, loadAt)
	}
	return snap, nil
}

func oldest(ts ...time.Time) time.Time {
	out := ts[0]
	for _, t := range ts[1:] {
		if t.Before(out) {
			out = t
		}
	}
	return out
}
