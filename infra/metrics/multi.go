package metrics

import coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"

// MultiSink fanouts optimization events to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the run to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(ev coremetrics.RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTickSkip forwards skipped ticks when supported by the sink.
func (m *MultiSink) RecordTickSkip(ev coremetrics.TickSkipEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.TickSkipRecorder); ok {
			if err := rec.RecordTickSkip(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPublish forwards publish events when supported by the sink.
func (m *MultiSink) RecordPublish(ev coremetrics.PublishEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PublishRecorder); ok {
			if err := rec.RecordPublish(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSnapshot forwards snapshot events when supported by the sink.
func (m *MultiSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.SnapshotRecorder); ok {
			if err := rec.RecordSnapshot(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
