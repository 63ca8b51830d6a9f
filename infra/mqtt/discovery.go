package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
)

type discoveryDevice struct {
	Identifiers []string `json:"identifiers"`
	Name        string   `json:"name"`
	Model       string   `json:"model"`
}

type discoveryPayload struct {
	Name              string          `json:"name"`
	UniqueID          string          `json:"unique_id"`
	StateTopic        string          `json:"state_topic"`
	ValueTemplate     string          `json:"value_template"`
	UnitOfMeasurement string          `json:"unit_of_measurement,omitempty"`
	DeviceClass       string          `json:"device_class,omitempty"`
	Device            discoveryDevice `json:"device"`
}

// AnnounceDiscovery publishes retained Home Assistant discovery configs
// derived from the plan topic. A Home Assistant instance on the same broker
// then creates the matching entities without manual configuration. Does
// nothing when no discovery prefix is configured.
func (p *PahoClient) AnnounceDiscovery() error {
	if p.discoveryPrefix == "" {
		return nil
	}
	node := strings.ReplaceAll(p.prefix, "/", "_")
	device := discoveryDevice{
		Identifiers: []string{node},
		Name:        "Genetic Load Manager",
		Model:       "battery-optimizer",
	}
	entities := []struct {
		component string
		objectID  string
		payload   discoveryPayload
	}{
		{"sensor", "battery_power", discoveryPayload{
			Name:              "Battery plan power",
			UniqueID:          node + "_battery_power",
			StateTopic:        p.Topic(),
			ValueTemplate:     "{{ value_json.battery_kw[0] }}",
			UnitOfMeasurement: "kW",
			DeviceClass:       "power",
			Device:            device,
		}},
		{"sensor", "soc", discoveryPayload{
			Name:              "Battery state of charge",
			UniqueID:          node + "_soc",
			StateTopic:        p.Topic(),
			ValueTemplate:     "{{ (value_json.soc[0] * 100) | round(1) }}",
			UnitOfMeasurement: "%",
			DeviceClass:       "battery",
			Device:            device,
		}},
		{"sensor", "savings", discoveryPayload{
			Name:              "Plan savings",
			UniqueID:          node + "_savings",
			StateTopic:        p.Topic(),
			ValueTemplate:     "{{ value_json.savings | round(4) }}",
			UnitOfMeasurement: "EUR",
			DeviceClass:       "monetary",
			Device:            device,
		}},
		{"binary_sensor", "feasible", discoveryPayload{
			Name:          "Plan feasible",
			UniqueID:      node + "_feasible",
			StateTopic:    p.Topic(),
			ValueTemplate: "{{ 'ON' if value_json.feasible else 'OFF' }}",
			Device:        device,
		}},
	}
	for _, e := range entities {
		topic := fmt.Sprintf("%s/%s/%s/%s/config", p.discoveryPrefix, e.component, node, e.objectID)
		payload, err := json.Marshal(e.payload)
		if err != nil {
			return err
		}
		if err := p.publish(topic, "discovery", true, payload); err != nil {
			return err
		}
	}
	return nil
}
