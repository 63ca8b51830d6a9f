package main

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// HouseholdSim publishes sensor data for one simulated household and applies
// setpoints received from the optimizer.
type HouseholdSim struct {
	cfg      Config
	house    *House
	battery  *SimBattery
	strategy SetpointStrategy
	metrics  coremetrics.MetricsSink

	client paho.Client

	mu      sync.Mutex
	powerKW float64 // active battery setpoint
}

type setpointMsg struct {
	CommandID string  `json:"command_id"`
	PowerKW   float64 `json:"power_kw"`
}

// vectorMsg and valueMsg are the sensor wire shapes the optimizer parses.
type vectorMsg struct {
	Values    []float64 `json:"values"`
	Timestamp int64     `json:"timestamp"`
}

type valueMsg struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
}

// NewHouseholdSim wires a household together. A nil sink disables snapshot
// recording.
func NewHouseholdSim(cfg Config, house *House, battery *SimBattery, strat SetpointStrategy, sink coremetrics.MetricsSink) *HouseholdSim {
	return &HouseholdSim{
		cfg:      cfg,
		house:    house,
		battery:  battery,
		strategy: strat,
		metrics:  sink,
	}
}

// Run connects to the broker, listens for setpoints and publishes sensor
// data every interval until ctx is done.
func (s *HouseholdSim) Run(ctx context.Context) error {
	cli, err := newMQTTClient(s.cfg.Broker, "household-sim")
	if err != nil {
		return err
	}
	s.client = cli
	defer cli.Disconnect(250)

	topic := s.cfg.TopicPrefix + "/setpoint"
	if token := cli.Subscribe(topic, 0, s.onSetpoint(ctx)); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	s.publishSensors(time.Now())
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			s.step(now)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *HouseholdSim) onSetpoint(ctx context.Context) func(paho.Client, paho.Message) {
	return func(_ paho.Client, msg paho.Message) {
		var m setpointMsg
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("decode setpoint: %v", err)
			return
		}
		go func() {
			if !s.strategy.Accept(ctx) {
				log.Printf("setpoint %s dropped", m.CommandID)
				return
			}
			s.mu.Lock()
			s.powerKW = m.PowerKW
			s.mu.Unlock()
			log.Printf("setpoint %s applied: %.2f kW", m.CommandID, m.PowerKW)
		}()
	}
}

// step advances the battery by one interval at the active setpoint and
// publishes fresh sensor data.
func (s *HouseholdSim) step(now time.Time) {
	s.mu.Lock()
	power := s.powerKW
	s.mu.Unlock()
	s.battery.ApplyPower(power, s.cfg.Interval)
	s.publishSensors(now)
}

// publishSensors emits the forecast vectors and the battery SoC as retained
// messages, so a late subscriber picks up the last reading immediately.
func (s *HouseholdSim) publishSensors(now time.Time) {
	ts := now.UnixMilli()
	solar := s.house.SolarForecast(now)
	price := s.house.PriceForecast(now)
	load := s.house.LoadForecast(now)
	soc := s.battery.SoC()

	s.publishVector(s.cfg.SolarTopic, solar, ts)
	s.publishVector(s.cfg.PriceTopic, price, ts)
	s.publishVector(s.cfg.LoadTopic, load, ts)
	s.publishValue(s.cfg.SoCTopic, soc, ts)

	if s.metrics == nil {
		return
	}
	ev := coremetrics.SnapshotEvent{
		Snapshot: model.ForecastSnapshot{
			SolarForecastKW: solar,
			PricePerKWh:     price,
			BaseLoadKW:      load,
			SoC:             soc,
			Battery: model.BatterySpec{
				CapacityKWh:    s.cfg.CapacityKWh,
				MaxChargeKW:    s.cfg.ChargeRateKW,
				MaxDischargeKW: s.cfg.DischargeRateKW,
			},
			SlotDuration: time.Duration(s.cfg.SlotMinutes) * time.Minute,
			Timestamp:    now,
		},
		Component: "household-sim",
		Time:      now,
	}
	if err := s.metrics.RecordSnapshot(ev); err != nil {
		log.Printf("record snapshot: %v", err)
	}
}

func (s *HouseholdSim) publishVector(topic string, values []float64, ts int64) {
	payload, err := json.Marshal(vectorMsg{Values: values, Timestamp: ts})
	if err != nil {
		log.Printf("marshal %s: %v", topic, err)
		return
	}
	s.publish(topic, payload)
}

func (s *HouseholdSim) publishValue(topic string, v float64, ts int64) {
	payload, err := json.Marshal(valueMsg{Value: v, Timestamp: ts})
	if err != nil {
		log.Printf("marshal %s: %v", topic, err)
		return
	}
	s.publish(topic, payload)
}

func (s *HouseholdSim) publish(topic string, payload []byte) {
	token := s.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("publish timeout on %s", topic)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("publish %s: %v", topic, err)
	}
}

func newMQTTClient(broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.AutoReconnect = true
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return cli, nil
}
