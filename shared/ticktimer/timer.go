package ticktimer

import (
	"time"

	opt "github.com/repeale/fp-go/option"
)

// State is the observable condition of a Timer at a given tick.
type State int

const (
	NotRunning State = iota
	Running
	Expired
)

// Timer counts down to a target tick. The zero value is a disarmed timer.
// Fields are exported so the timer replicates as part of a component.
type Timer struct {
	Target Tick
	Armed  bool
}

// None returns a disarmed timer.
func None() Timer { return Timer{} }

// FromTicks arms a timer that expires ticks from now.
func FromTicks(c Clock, ticks int) Timer {
	if ticks < 0 {
		ticks = 0
	}
	return Timer{Target: c.Tick() + Tick(ticks), Armed: true}
}

// FromDuration arms a timer for d, rounded up to whole ticks. Negative
// durations arm an already expired timer.
func FromDuration(c Clock, d time.Duration) Timer {
	return FromTicks(c, TicksFor(c, d))
}

// IsRunning reports whether the timer is armed. An expired timer stays
// running until it is replaced with None.
func (t Timer) IsRunning() bool { return t.Armed }

// Expired reports whether an armed timer has reached its target.
func (t Timer) Expired(c Clock) bool {
	return t.Armed && c.Tick() >= t.Target
}

// ExpiredOrNotRunning is the gate for "may I act now": true when the timer
// was never armed and when its duration has elapsed.
func (t Timer) ExpiredOrNotRunning(c Clock) bool {
	return !t.Armed || c.Tick() >= t.Target
}

func (t Timer) State(c Clock) State {
	switch {
	case !t.Armed:
		return NotRunning
	case c.Tick() >= t.Target:
		return Expired
	default:
		return Running
	}
}

// RemainingTicks is empty for a disarmed timer and zero once expired.
func (t Timer) RemainingTicks(c Clock) opt.Option[int] {
	if !t.Armed {
		return opt.None[int]()
	}
	left := t.Target - c.Tick()
	if left < 0 {
		left = 0
	}
	return opt.Some[int](int(left))
}

// Remaining is RemainingTicks expressed as wall time.
func (t Timer) Remaining(c Clock) opt.Option[time.Duration] {
	ticks := t.RemainingTicks(c)
	if opt.IsNone(ticks) {
		return opt.None[time.Duration]()
	}
	return opt.Some[time.Duration](time.Duration(ticks.Value) * DeltaTime(c))
}

// Fraction is the remaining share of total in [0,1]; zero when not running.
func (t Timer) Fraction(c Clock, total time.Duration) float64 {
	ticks := t.RemainingTicks(c)
	full := TicksFor(c, total)
	if opt.IsNone(ticks) || full == 0 {
		return 0
	}
	f := float64(ticks.Value) / float64(full)
	if f > 1 {
		f = 1
	}
	return f
}
