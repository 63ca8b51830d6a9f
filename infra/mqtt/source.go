package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
)

// SourceConfig names the sensor topics a SnapshotSource listens on. The load
// topic is optional; the other three are required.
type SourceConfig struct {
	SolarTopic string `json:"solar_topic" yaml:"solar_topic"`
	PriceTopic string `json:"price_topic" yaml:"price_topic"`
	SoCTopic   string `json:"soc_topic" yaml:"soc_topic"`
	LoadTopic  string `json:"load_topic" yaml:"load_topic"`
}

// subscriber is the client capability the source needs.
type subscriber interface {
	Subscribe(topic string, handler func(topic string, payload []byte)) error
}

// vectorPayload carries a per-slot forecast vector. A missing timestamp means
// the message is as fresh as its arrival.
type vectorPayload struct {
	Values    []float64 `json:"values"`
	Timestamp int64     `json:"timestamp"`
}

type valuePayload struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
}

type series struct {
	values []float64
	at     time.Time
}

// SnapshotSource assembles forecast snapshots from retained sensor topics.
// Each constituent keeps the timestamp of its last update and the snapshot
// carries the oldest of them, so staleness checks catch a single dead sensor.
type SnapshotSource struct {
	cfg     SourceConfig
	battery model.BatterySpec
	slot    time.Duration

	mu    sync.RWMutex
	solar series
	price series
	load  series
	soc   float64
	socAt time.Time

	logger logger.Logger
	now    func() time.Time
}

// NewSnapshotSource subscribes to the configured sensor topics and returns a
// provider that assembles snapshots from the latest readings.
func NewSnapshotSource(cli subscriber, cfg SourceConfig, battery model.BatterySpec, slot time.Duration) (*SnapshotSource, error) {
	if cli == nil {
		return nil, fmt.Errorf("mqtt: subscriber client is required")
	}
	if cfg.SolarTopic == "" || cfg.PriceTopic == "" || cfg.SoCTopic == "" {
		return nil, fmt.Errorf("mqtt: solar_topic, price_topic and soc_topic are required")
	}
	if slot <= 0 {
		return nil, fmt.Errorf("mqtt: slot duration must be positive")
	}
	s := &SnapshotSource{
		cfg:     cfg,
		battery: battery,
		slot:    slot,
		logger:  logger.New("mqtt_source"),
		now:     time.Now,
	}
	if err := cli.Subscribe(cfg.SolarTopic, s.onVector(&s.solar)); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", cfg.SolarTopic, err)
	}
	if err := cli.Subscribe(cfg.PriceTopic, s.onVector(&s.price)); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", cfg.PriceTopic, err)
	}
	if err := cli.Subscribe(cfg.SoCTopic, s.onSoC); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", cfg.SoCTopic, err)
	}
	if cfg.LoadTopic != "" {
		if err := cli.Subscribe(cfg.LoadTopic, s.onVector(&s.load)); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", cfg.LoadTopic, err)
		}
	}
	return s, nil
}

func (s *SnapshotSource) onVector(dst *series) func(topic string, payload []byte) {
	return func(topic string, payload []byte) {
		var msg vectorPayload
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Errorf("decode %s: %v", topic, err)
			return
		}
		at := s.now()
		if msg.Timestamp > 0 {
			at = time.UnixMilli(msg.Timestamp)
		}
		s.mu.Lock()
		dst.values = msg.Values
		dst.at = at
		s.mu.Unlock()
	}
}

func (s *SnapshotSource) onSoC(topic string, payload []byte) {
	var msg valuePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.logger.Errorf("decode %s: %v", topic, err)
		return
	}
	at := s.now()
	if msg.Timestamp > 0 {
		at = time.UnixMilli(msg.Timestamp)
	}
	s.mu.Lock()
	s.soc = msg.Value
	s.socAt = at
	s.mu.Unlock()
}

// Snapshot assembles a forecast snapshot from the latest sensor readings. It
// fails while any required constituent has not been received yet.
func (s *SnapshotSource) Snapshot(_ context.Context) (model.ForecastSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.solar.values == nil {
		return model.ForecastSnapshot{}, fmt.Errorf("no solar forecast received on %s", s.cfg.SolarTopic)
	}
	if s.price.values == nil {
		return model.ForecastSnapshot{}, fmt.Errorf("no price forecast received on %s", s.cfg.PriceTopic)
	}
	if s.socAt.IsZero() {
		return model.ForecastSnapshot{}, fmt.Errorf("no state of charge received on %s", s.cfg.SoCTopic)
	}
	snap := model.ForecastSnapshot{
		SolarForecastKW: append([]float64(nil), s.solar.values...),
		PricePerKWh:     append([]float64(nil), s.price.values...),
		SoC:             s.soc,
		Battery:         s.battery,
		SlotDuration:    s.slot,
		Timestamp:       oldest(s.solar.at, s.price.at, s.socAt),
	}
	if s.load.values != nil {
		snap.BaseLoadKW = append([]float64(nil), s.load.values...)
		snap.Timestamp = oldest(snap.Timestamp, s.load.at)
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
