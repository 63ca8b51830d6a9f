package main

import (
	"context"
	"math/rand"
	"time"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// SetpointStrategy decides whether a received setpoint is applied.
type SetpointStrategy interface {
	Accept(ctx context.Context) bool
}

// InstantApply applies every setpoint immediately.
type InstantApply struct{}

// Accept implements SetpointStrategy.
func (InstantApply) Accept(context.Context) bool { return true }

// LossyApply drops setpoints with the configured probability and waits for
// the specified delay before applying the rest.
type LossyApply struct {
	Delay    time.Duration
	DropRate float64
}

// Accept implements SetpointStrategy.
func (l LossyApply) Accept(ctx context.Context) bool {
	if l.DropRate > 0 && rng.Float64() < l.DropRate {
		return false
	}
	if l.Delay > 0 {
		select {
		case <-time.After(l.Delay):
		case <-ctx.Done():
			return false
		}
	}
	return true
}
