package messages

import (
	"testing"

	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestPlayerInputClampsMove(t *testing.T) {
	msg := PlayerInput{Sequence: 7, MoveX: 3, MoveY: 4, LookX: 1.5}
	frame := msg.Frame()

	assert.Equal(t, uint32(7), frame.Sequence)
	assert.InDelta(t, 1.0, frame.Move.Len(), 1e-9)
	assert.Equal(t, mgl64.Vec2{1.5, 0}, frame.Look)
}

func TestNewPlayerInputKeepsButtons(t *testing.T) {
	var b netinput.Buttons
	b.Set(netinput.ButtonLaser, true)

	msg := NewPlayerInput(netinput.Frame{Sequence: 3, Buttons: b, Move: mgl64.Vec2{-1, 0}})
	assert.True(t, msg.Buttons.IsSet(netinput.ButtonLaser))
	assert.Equal(t, -1.0, msg.MoveX)
}

func TestStamp(t *testing.T) {
	ev := CountdownEvent{Value: 3}
	var s Stamper = &ev
	s.Stamp(9, 120)

	var e Event = ev
	assert.Equal(t, EventHeader{Seq: 9, Tick: 120}, e.Header())
}
