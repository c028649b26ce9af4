package messages

import (
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/go-gl/mathgl/mgl64"
)

// PlayerInput is sent from client to server once per tick with the committed input frame.
// The server applies at most one per player per tick, in Sequence order.
type PlayerInput struct {
	Sequence     uint32 // Incrementing ID for reconciliation
	Buttons      netinput.Buttons
	MoveX, MoveY float64
	LookX, LookY float64 // pitch and yaw delta in degrees
}

// NewPlayerInput wraps a committed frame for the wire.
func NewPlayerInput(frame netinput.Frame) PlayerInput {
	return PlayerInput{
		Sequence: frame.Sequence,
		Buttons:  frame.Buttons,
		MoveX:    frame.Move.X(),
		MoveY:    frame.Move.Y(),
		LookX:    frame.Look.X(),
		LookY:    frame.Look.Y(),
	}
}

// Frame unwraps the message, clamping the movement axis.
func (p PlayerInput) Frame() netinput.Frame {
	return netinput.Frame{
		Sequence: p.Sequence,
		Buttons:  p.Buttons,
		Move:     netinput.ClampMove(mgl64.Vec2{p.MoveX, p.MoveY}),
		Look:     mgl64.Vec2{p.LookX, p.LookY},
	}
}

// ReadyRequest signals that the sender wants to play the next match.
type ReadyRequest struct{}
