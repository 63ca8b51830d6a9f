// Package metrics defines interfaces for recording optimization
// observability events. Sinks like PromSink and InfluxSink in
// infra/metrics record run outcomes, skipped ticks and plan publishes
// and can be combined with NewMultiSink. Optional capabilities are
// modeled as recorder interfaces a sink may implement.
package metrics
