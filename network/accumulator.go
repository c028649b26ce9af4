package network

import (
	"time"

	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sasha-s/go-deadlock"
)

// Sample is one raw reading from the input devices. Look is in degrees and
// already scaled by sensitivity; Buttons is the held state at sampling time.
type Sample struct {
	Move    mgl64.Vec2
	Buttons netinput.Buttons
	Look    mgl64.Vec2
}

type lookSample struct {
	at       time.Time
	delta    mgl64.Vec2
	window   time.Duration
	released float64 // fraction of delta already committed
}

// InputAccumulator turns samples taken at any rate into one Frame per tick.
//
// Each look delta is released linearly over the smoothing window that starts
// when it was sampled, so the window spans ticks and the sum of committed
// look always equals the sum sampled. Buttons are OR'd between flushes so a
// press shorter than a tick still reaches the authority.
type InputAccumulator struct {
	mu deadlock.Mutex

	window  time.Duration
	samples []lookSample

	pressed   netinput.Buttons
	held      netinput.Buttons
	move      mgl64.Vec2
	moveCount int
	lastMove  mgl64.Vec2

	seq uint32
}

func NewInputAccumulator(window time.Duration) *InputAccumulator {
	if window < 0 {
		window = 0
	}
	return &InputAccumulator{window: window}
}

// SetWindow changes the smoothing window for samples taken from now on.
// Samples already pending keep releasing at their old pace.
func (a *InputAccumulator) SetWindow(window time.Duration) {
	if window < 0 {
		window = 0
	}
	a.mu.Lock()
	a.window = window
	a.mu.Unlock()
}

// Add records a sample taken at now.
func (a *InputAccumulator) Add(now time.Time, s Sample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pressed = a.pressed.Merge(s.Buttons)
	a.held = s.Buttons
	a.move = a.move.Add(s.Move)
	a.moveCount++

	if s.Look != (mgl64.Vec2{}) {
		a.samples = append(a.samples, lookSample{at: now, delta: s.Look, window: a.window})
	}
}

// Flush commits the frame for the next tick and resets discrete state. With
// no samples since the last flush the held buttons and direction repeat.
func (a *InputAccumulator) Flush(now time.Time) netinput.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()

	move := a.lastMove
	if a.moveCount > 0 {
		move = netinput.ClampMove(a.move)
		a.lastMove = move
	}

	a.seq++
	f := netinput.Frame{
		Sequence: a.seq,
		Move:     move,
		Buttons:  a.pressed.Merge(a.held),
		Look:     a.release(now),
	}

	a.pressed = 0
	a.move = mgl64.Vec2{}
	a.moveCount = 0
	return f
}

// release commits the part of every pending look sample whose window has
// elapsed by now.
func (a *InputAccumulator) release(now time.Time) mgl64.Vec2 {
	var out mgl64.Vec2
	kept := a.samples[:0]
	for _, s := range a.samples {
		progress := 1.0
		if s.window > 0 {
			progress = mgl64.Clamp(float64(now.Sub(s.at))/float64(s.window), 0, 1)
		}
		if progress > s.released {
			out = out.Add(s.delta.Mul(progress - s.released))
			s.released = progress
		}
		if s.released < 1 {
			kept = append(kept, s)
		}
	}
	a.samples = kept
	return out
}

// Pending is the look sampled but not yet committed by a flush.
func (a *InputAccumulator) Pending() mgl64.Vec2 {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out mgl64.Vec2
	for _, s := range a.samples {
		out = out.Add(s.delta.Mul(1 - s.released))
	}
	return out
}

// Sequence is the sequence number of the last flushed frame.
func (a *InputAccumulator) Sequence() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seq
}
