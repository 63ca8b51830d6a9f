package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus is the mixed-kind bus shared by the scheduler, the tariff feed
// and the metrics collector. Subscribers type-switch on what they receive.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus implementation.
type Bus = TypedBus[Event]

var _ EventBus = (*Bus)(nil)

// New creates a new Bus.
func New() *Bus { return NewTyped[Event]() }
