package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/events"
	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
	"github.com/FilipeDoria/genetic-load-manager/internal/eventbus"
)

type captureSink struct {
	mu        sync.Mutex
	runs      int
	skips     int
	publishes int
}

func (s *captureSink) RecordRun(coremetrics.RunEvent) error {
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
	return nil
}

func (s *captureSink) RecordTickSkip(coremetrics.TickSkipEvent) error {
	s.mu.Lock()
	s.skips++
	s.mu.Unlock()
	return nil
}

func (s *captureSink) RecordPublish(coremetrics.PublishEvent) error {
	s.mu.Lock()
	s.publishes++
	s.mu.Unlock()
	return nil
}

func (s *captureSink) counts() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.skips, s.publishes
}

func TestStartEventCollectorForwardsPublishes(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &captureSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)
	bus.Publish(events.PublishEvent{RunID: "r1", Topic: "home/plan"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, _, pubs := sink.counts()
		if pubs == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("publish event not forwarded, publishes=%d", pubs)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Run and skip outcomes reach the sink through the scheduler. The collector
// must leave them alone or every run would be counted twice.
func TestStartEventCollectorIgnoresRunAndSkip(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &captureSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)
	bus.Publish(events.RunEvent{Result: model.RunResult{ID: "r1"}})
	bus.Publish(events.SkipEvent{Reason: "stale_snapshot"})
	bus.Publish(events.PublishEvent{RunID: "r1", Topic: "home/plan"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		runs, skips, pubs := sink.counts()
		if pubs == 1 {
			if runs != 0 || skips != 0 {
				t.Fatalf("collector recorded runs=%d skips=%d, want 0", runs, skips)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("publish event not forwarded: runs=%d skips=%d publishes=%d", runs, skips, pubs)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
