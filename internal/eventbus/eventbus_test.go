package eventbus

import (
	"errors"
	"testing"

	"github.com/FilipeDoria/genetic-load-manager/core/events"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish(events.SkipEvent{Reason: "stale_snapshot", Err: errors.New("snapshot too old")})
	raw := <-ch
	ev, ok := raw.(events.SkipEvent)
	if !ok {
		t.Fatalf("expected SkipEvent, got %T", raw)
	}
	if ev.Reason != "stale_snapshot" {
		t.Fatalf("expected stale_snapshot got %q", ev.Reason)
	}
	bus.Unsubscribe(ch)
}

func TestBusSlowSubscriberDrops(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	// Nothing reads ch, so publishes beyond the buffer must be dropped
	// without blocking the publisher.
	for i := 0; i < subscriberBuffer+5; i++ {
		bus.Publish(events.PublishEvent{RunID: "r", Topic: "t"})
	}
	if got := len(ch); got != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, got)
	}
	bus.Unsubscribe(ch)
}

func TestBusUnsubscribeKeepsOtherSubscribers(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Unsubscribe(ch1)
	bus.Publish(events.PublishEvent{RunID: "r1", Topic: "plans"})
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed after Unsubscribe")
	}
	ev := <-ch2
	if pe, ok := ev.(events.PublishEvent); !ok || pe.RunID != "r1" {
		t.Fatalf("expected PublishEvent r1 on ch2, got %#v", ev)
	}
	bus.Unsubscribe(ch2)
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	// Publish and a second Close after Close are no-ops.
	bus.Publish(events.SkipEvent{Reason: "provider_error"})
	bus.Close()
}

func TestBusSubscribeAfterClose(t *testing.T) {
	bus := New()
	bus.Close()
	ch := bus.Subscribe()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel from Subscribe after Close")
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
