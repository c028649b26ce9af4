// Package ticktimer provides countdown timers measured in simulation ticks.
package ticktimer

import "time"

// Tick is one fixed-rate step of the simulation loop.
type Tick int64

// Clock exposes the current tick and the fixed tick rate.
type Clock interface {
	Tick() Tick
	TickRate() int
}

// SimClock is the tick counter owned by the simulation loop.
// Ticks start at 1 so that a timer armed on the first tick is never zero.
type SimClock struct {
	tick Tick
	rate int
}

func NewSimClock(tickRate int) *SimClock {
	if tickRate < 1 {
		tickRate = 1
	}
	return &SimClock{tick: 1, rate: tickRate}
}

func (c *SimClock) Tick() Tick    { return c.tick }
func (c *SimClock) TickRate() int { return c.rate }

// Advance moves the clock forward one tick and returns the new tick.
func (c *SimClock) Advance() Tick {
	c.tick++
	return c.tick
}

// Sync sets the clock to a tick observed from the authority.
func (c *SimClock) Sync(tick Tick, tickRate int) {
	c.tick = tick
	if tickRate > 0 {
		c.rate = tickRate
	}
}

// At returns a read-only clock frozen at the given tick.
func At(tick Tick, tickRate int) Clock {
	if tickRate < 1 {
		tickRate = 1
	}
	return fixedClock{tick: tick, rate: tickRate}
}

type fixedClock struct {
	tick Tick
	rate int
}

func (c fixedClock) Tick() Tick    { return c.tick }
func (c fixedClock) TickRate() int { return c.rate }

// DeltaTime is the wall duration of one tick.
func DeltaTime(c Clock) time.Duration {
	return time.Second / time.Duration(c.TickRate())
}

// TicksFor converts a duration to whole ticks, rounding up.
func TicksFor(c Clock, d time.Duration) int {
	if d <= 0 {
		return 0
	}
	rate := int64(c.TickRate())
	return int((int64(d)*rate + int64(time.Second) - 1) / int64(time.Second))
}
