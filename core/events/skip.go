package events

// SkipEvent is emitted when the scheduler skips a tick and keeps the
// previous plan. Reason can be "stale_snapshot", "provider_error",
// "invalid_snapshot", "run_in_progress", "optimizer_error",
// "infeasible" or "internal_error".
type SkipEvent struct {
	Reason string
	Err    error
}
