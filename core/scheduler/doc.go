// Package scheduler runs the optimizer on a fixed interval against fresh
// forecast snapshots. Each tick replaces the published plan atomically;
// ticks with stale or invalid inputs are skipped and the previous plan
// stays in effect. A failing tick never brings the host process down.
package scheduler
