// Package infra holds the technical adapters behind the core interfaces:
// the MQTT plan publisher and sensor source, the Prometheus and InfluxDB
// sinks, the SQLite KPI store, the Home Assistant poller and the Sentry
// monitor. Nothing in here is imported by core packages.
package infra
