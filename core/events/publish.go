package events

// PublishEvent is emitted after a plan reaches a downstream consumer.
type PublishEvent struct {
	RunID string
	Topic string
}
