package core

import (
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/go-gl/mathgl/mgl64"
)

type playerInputs struct {
	frames  []netinput.Frame
	lastSeq uint32
	last    netinput.Frame
}

// InputQueue buffers committed frames per player. One frame is consumed per
// player per tick.
type InputQueue struct {
	depth   int
	players map[netconfig.PlayerID]*playerInputs
}

func NewInputQueue(depth int) *InputQueue {
	if depth < 1 {
		depth = 1
	}
	return &InputQueue{depth: depth, players: make(map[netconfig.PlayerID]*playerInputs)}
}

// Push queues a frame. Frames that are not newer than the last accepted one
// are dropped. A full queue drops its oldest frame.
func (q *InputQueue) Push(id netconfig.PlayerID, frame netinput.Frame) bool {
	pi, ok := q.players[id]
	if !ok {
		pi = &playerInputs{}
		q.players[id] = pi
	}
	if pi.lastSeq != 0 && frame.Sequence <= pi.lastSeq {
		return false
	}
	pi.lastSeq = frame.Sequence

	if len(pi.frames) == q.depth {
		// Keep the dropped frame's buttons so a press is not lost
		frame.Buttons = frame.Buttons.Merge(pi.frames[0].Buttons)
		pi.frames = pi.frames[1:]
	}
	pi.frames = append(pi.frames, frame)
	return true
}

// Pop returns the next frame for id. When nothing arrived it repeats the last
// frame's held buttons and movement with no look delta, so a late packet does
// not read as a release.
func (q *InputQueue) Pop(id netconfig.PlayerID) netinput.Frame {
	pi, ok := q.players[id]
	if !ok {
		return netinput.Frame{}
	}
	if len(pi.frames) == 0 {
		held := pi.last
		held.Look = mgl64.Vec2{}
		return held
	}
	frame := pi.frames[0]
	pi.frames = pi.frames[1:]
	pi.last = frame
	return frame
}

// Len reports how many frames are queued for id.
func (q *InputQueue) Len(id netconfig.PlayerID) int {
	if pi, ok := q.players[id]; ok {
		return len(pi.frames)
	}
	return 0
}

func (q *InputQueue) Remove(id netconfig.PlayerID) {
	delete(q.players, id)
}
