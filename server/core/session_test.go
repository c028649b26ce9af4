package core

import (
	"testing"

	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(seq uint32, buttons ...netinput.Button) netinput.Frame {
	f := netinput.Frame{Sequence: seq}
	for _, b := range buttons {
		f.Buttons.Set(b, true)
	}
	return f
}

func TestInputQueueOrder(t *testing.T) {
	q := NewInputQueue(4)

	assert.True(t, q.Push(1, frame(1)))
	assert.True(t, q.Push(1, frame(2)))
	assert.False(t, q.Push(1, frame(2)), "duplicate sequence")
	assert.False(t, q.Push(1, frame(1)), "stale sequence")
	assert.Equal(t, 2, q.Len(1))

	assert.Equal(t, uint32(1), q.Pop(1).Sequence)
	assert.Equal(t, uint32(2), q.Pop(1).Sequence)
	assert.Zero(t, q.Len(1))
}

func TestInputQueueOverflowKeepsPresses(t *testing.T) {
	q := NewInputQueue(2)

	q.Push(1, frame(1, netinput.ButtonLaser))
	q.Push(1, frame(2))
	q.Push(1, frame(3, netinput.ButtonJump))
	require.Equal(t, 2, q.Len(1))

	first := q.Pop(1)
	assert.Equal(t, uint32(2), first.Sequence)
	second := q.Pop(1)
	assert.True(t, second.Buttons.IsSet(netinput.ButtonJump))
	assert.True(t, second.Buttons.IsSet(netinput.ButtonLaser), "dropped press carried forward")
}

func TestInputQueueRepeatsHeldWhenStarved(t *testing.T) {
	q := NewInputQueue(4)
	assert.Equal(t, netinput.Frame{}, q.Pop(1))

	f := frame(1, netinput.ButtonGlide)
	f.Move = mgl64.Vec2{1, 0}
	f.Look = mgl64.Vec2{3, 4}
	q.Push(1, f)
	q.Pop(1)

	held := q.Pop(1)
	assert.True(t, held.Buttons.IsSet(netinput.ButtonGlide))
	assert.Equal(t, mgl64.Vec2{1, 0}, held.Move)
	assert.Equal(t, mgl64.Vec2{}, held.Look)

	q.Remove(1)
	assert.Equal(t, netinput.Frame{}, q.Pop(1))
}

func TestBroadcasterStampsInOrder(t *testing.T) {
	clock := ticktimer.NewSimClock(20)
	var got []messages.Event
	b := NewBroadcaster(clock, SinkFunc(func(ev messages.Event) { got = append(got, ev) }))

	first := Publish(b, messages.CountdownEvent{Value: 3})
	clock.Advance()
	second := Publish(b, messages.TimeOutEvent{})

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, int64(1), first.Tick)
	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, int64(2), second.Tick)
	assert.Equal(t, uint64(2), b.Seq())
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].(messages.CountdownEvent).Value)

	var late []messages.Event
	b.AddSink(SinkFunc(func(ev messages.Event) { late = append(late, ev) }))
	Publish(b, messages.CourseResetEvent{})
	assert.Len(t, got, 3)
	assert.Len(t, late, 1)
}

func TestSessionPublishesTickAndDigest(t *testing.T) {
	h := newHarness(t)
	h.join(1, 2)
	h.tick(3)

	m := h.match()
	assert.Equal(t, h.session.Clock().Tick(), m.Tick)
	assert.Equal(t, h.cfg.Server.TickRate, m.TickRate)

	digest, err := h.session.Store().Digest()
	require.NoError(t, err)
	assert.Equal(t, digest, m.Digest)
	assert.Equal(t, 3, h.world.steps)
}

func TestSessionRefusesUnknownPlayers(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.session.PushInput(7, netinput.Frame{Sequence: 1}))
	h.session.SetReady(7)
	h.session.Leave(7)
	h.tick(1)
	assert.Equal(t, netconfig.PhaseLobby, h.match().Phase())
}

func TestStarvedInputDoesNotRepress(t *testing.T) {
	h := newHarness(t)
	h.join(1)
	h.world.bodies[1].grounded = false

	h.hold(1, netinput.ButtonGlide)
	h.tick(3)

	assert.True(t, h.player(1).Gliding, "missing frames keep the button held")
	assert.Len(t, h.world.bodies[1].impulses, 0)
}

func TestKinematicsFollowPhysics(t *testing.T) {
	h := newHarness(t)
	h.join(1)
	h.world.bodies[1].pos = mgl64.Vec2{10, 20}
	h.tick(1)

	pos, ok := h.session.Store().Position(1)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec2{10, 20}, pos.Vec())
}
