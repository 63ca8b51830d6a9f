package metrics

import (
	"context"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/events"
	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/FilipeDoria/genetic-load-manager/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records publish
// confirmations in the sink. Run and skip outcomes are recorded by the
// scheduler directly; mapping them here as well would count them twice.
// The collector stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, isPublish := ev.(events.PublishEvent); isPublish {
					if r, ok := sink.(coremetrics.PublishRecorder); ok {
						_ = r.RecordPublish(coremetrics.PublishEvent{
							RunID: e.RunID,
							Topic: e.Topic,
							Time:  time.Now(),
						})
					}
				}
			}
		}
	}()
}
