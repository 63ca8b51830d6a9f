package pricing

import (
	"sync"
	"time"
)

// Intake accepts tariff events from a feed.
type Intake interface {
	Add(TariffEvent)
}

// EventStore holds the tariff events received so far. Events whose window
// has ended are pruned lazily on read.
type EventStore struct {
	mu     sync.Mutex
	events []TariffEvent
}

// NewEventStore returns an empty store.
func NewEventStore() *EventStore { return &EventStore{} }

// Add registers a new event. Callers validate before adding.
func (s *EventStore) Add(ev TariffEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Active returns a copy of the events still in effect at t, dropping the
// ones that have ended.
func (s *EventStore) Active(t time.Time) []TariffEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	for _, ev := range s.events {
		if ev.EndTime.After(t) {
			kept = append(kept, ev)
		}
	}
	s.events = kept
	out := make([]TariffEvent, len(kept))
	copy(out, kept)
	return out
}

// Len reports the number of stored events, expired ones included.
func (s *EventStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
