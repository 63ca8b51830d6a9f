package main

import (
	"math"
	"testing"
	"time"
)

func TestApplyPowerCharges(t *testing.T) {
	b := NewSimBattery(10, 3.6, 3.6, 0.5)
	applied := b.ApplyPower(2, time.Hour)
	if applied != 2 {
		t.Fatalf("applied = %v, want 2", applied)
	}
	if got := b.SoC(); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("soc = %v, want 0.7", got)
	}
}

func TestApplyPowerClampsToChargeRate(t *testing.T) {
	b := NewSimBattery(10, 3, 3, 0.1)
	applied := b.ApplyPower(5, time.Hour)
	if applied != 3 {
		t.Fatalf("applied = %v, want 3", applied)
	}
	if got := b.SoC(); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("soc = %v, want 0.4", got)
	}
}

func TestApplyPowerStopsAtFull(t *testing.T) {
	b := NewSimBattery(10, 5, 5, 0.9)
	applied := b.ApplyPower(5, time.Hour)
	if math.Abs(applied-1) > 1e-9 {
		t.Fatalf("applied = %v, want 1", applied)
	}
	if got := b.SoC(); math.Abs(got-1) > 1e-9 {
		t.Fatalf("soc = %v, want 1", got)
	}
}

func TestApplyPowerDischargesToEmpty(t *testing.T) {
	b := NewSimBattery(10, 5, 5, 0.2)
	applied := b.ApplyPower(-5, time.Hour)
	if math.Abs(applied+2) > 1e-9 {
		t.Fatalf("applied = %v, want -2", applied)
	}
	if got := b.SoC(); got != 0 {
		t.Fatalf("soc = %v, want 0", got)
	}
}

func TestApplyPowerClampsToDischargeRate(t *testing.T) {
	b := NewSimBattery(10, 3, 2, 0.8)
	applied := b.ApplyPower(-6, 30*time.Minute)
	if math.Abs(applied+2) > 1e-9 {
		t.Fatalf("applied = %v, want -2", applied)
	}
	if got := b.SoC(); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("soc = %v, want 0.7", got)
	}
}

func TestApplyPowerZeroDuration(t *testing.T) {
	b := NewSimBattery(10, 5, 5, 0.5)
	if applied := b.ApplyPower(3, 0); applied != 0 {
		t.Fatalf("applied = %v, want 0", applied)
	}
	if got := b.SoC(); got != 0.5 {
		t.Fatalf("soc = %v, want 0.5", got)
	}
}
