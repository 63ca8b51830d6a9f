package metrics

import (
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// RunEvent represents a completed optimization run to be recorded.
type RunEvent struct {
	Result    model.RunResult
	Component string
	Time      time.Time
}

// MetricsSink records optimization runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// TickSkipEvent captures a scheduler tick that produced no new plan.
type TickSkipEvent struct {
	Reason    string
	Component string
	Time      time.Time
}

// TickSkipRecorder records skipped scheduler ticks.
type TickSkipRecorder interface {
	RecordTickSkip(ev TickSkipEvent) error
}

// PublishEvent captures a plan delivery to a downstream consumer.
type PublishEvent struct {
	RunID string
	Topic string
	Time  time.Time
}

// PublishRecorder records plan publishes.
type PublishRecorder interface {
	RecordPublish(ev PublishEvent) error
}

// SnapshotEvent captures the forecast inputs a run consumed.
type SnapshotEvent struct {
	Snapshot  model.ForecastSnapshot
	Component string
	Time      time.Time
}

// SnapshotRecorder records forecast snapshots.
type SnapshotRecorder interface {
	RecordSnapshot(ev SnapshotEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error { return nil }

func (NopSink) RecordTickSkip(TickSkipEvent) error { return nil }
func (NopSink) RecordPublish(PublishEvent) error   { return nil }
func (NopSink) RecordSnapshot(SnapshotEvent) error { return nil }
