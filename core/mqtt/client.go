package mqtt

import "github.com/FilipeDoria/genetic-load-manager/core/model"

// Client represents an MQTT client capable of pushing dispatch plans and
// battery power setpoints to the home automation broker.
type Client interface {
	// PublishPlan publishes the full plan as a retained message on the plan
	// topic and the first slot action on the setpoint topic.
	PublishPlan(res model.RunResult) error

	// PublishSetpoint publishes a single battery power command in kW.
	// Positive values charge the battery, negative values discharge it.
	PublishSetpoint(powerKW float64) error
}
