package core

import (
	"testing"
	"time"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/SpeedyZooba/blocky-climb/shared/replica"
	"github.com/go-gl/mathgl/mgl64"
	opt "github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longMatch(cfg *config.Config) { cfg.Match.Duration = 60 * time.Second }

func TestFullMatch(t *testing.T) {
	h := newHarness(t)
	h.join(1, 2, 3, 4)

	// Lobby
	for _, id := range []netconfig.PlayerID{1, 2, 3, 4} {
		assert.Equal(t, h.course.LobbyPivot.Y, h.world.bodies[id].pos.Y())
	}
	assert.Equal(t, netconfig.PhaseLobby, h.match().Phase())

	h.startMatch()

	var countdown []int
	for _, ev := range eventsOf[messages.CountdownEvent](h.log) {
		countdown = append(countdown, ev.Value)
	}
	assert.Equal(t, []int{3, 2, 1}, countdown)

	m := h.match()
	assert.Equal(t, []netconfig.PlayerID{1, 2, 3, 4}, m.Participants)
	assert.Len(t, eventsOf[messages.SpawnPlacedEvent](h.log), 4)
	assert.Len(t, eventsOf[messages.MatchStartedEvent](h.log), 1)

	seen := map[mgl64.Vec2]bool{}
	for _, id := range m.Participants {
		p := h.player(id)
		assert.Equal(t, p.MaxHealth, p.Health)
		pos := h.world.bodies[id].pos
		assert.False(t, seen[pos], "spawn points are distinct")
		seen[pos] = true
		assert.Equal(t, mgl64.Vec2{p.SpawnX, p.SpawnY}, pos)
	}

	// Player 1 keeps firing at player 2
	h.world.ray = func(_, _ mgl64.Vec2, _ float64, ignore netconfig.PlayerID) opt.Option[Hit] {
		if ignore == 1 {
			return hitPlayer(2, 100)
		}
		return opt.None[Hit]()
	}
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			h.hold(1, netinput.ButtonLaser)
		} else {
			h.hold(1)
		}
		h.tick(1)
	}

	var hits []messages.AbilityEvent
	for _, ev := range abilityEvents(h.log, netconfig.AbilityLaser) {
		if ev.HitPlayer == 2 {
			hits = append(hits, ev)
		}
	}
	require.Len(t, hits, 4)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i].Tick-hits[i-1].Tick, int64(10))
	}
	died := eventsOf[messages.PlayerDiedEvent](h.log)
	require.Len(t, died, 1)
	assert.Equal(t, netconfig.PlayerID(2), died[0].Player)
	p2 := h.player(2)
	assert.Equal(t, p2.MaxHealth, p2.Health, "respawned with full health")
	assert.Equal(t, mgl64.Vec2{p2.SpawnX, p2.SpawnY}, h.world.bodies[2].pos)

	// Player 3 breaks block 1
	h.world.ray = func(_, _ mgl64.Vec2, _ float64, ignore netconfig.PlayerID) opt.Option[Hit] {
		if ignore == 3 {
			return opt.Some[Hit](Hit{Kind: HitBlock, Block: 1, Distance: 20})
		}
		return opt.None[Hit]()
	}
	h.hold(3, netinput.ButtonBreak)
	h.tick(1)
	require.True(t, h.session.Terrain().Broken(1))

	// Climb
	h.world.bodies[1].pos = mgl64.Vec2{50, 438}
	h.world.bodies[2].pos = mgl64.Vec2{50, 423}
	h.world.bodies[3].pos = mgl64.Vec2{50, 423}
	h.world.bodies[4].pos = mgl64.Vec2{50, 448}
	h.tick(1)
	assert.Equal(t, 10.0, h.player(1).Score)
	assert.Equal(t, 25.0, h.player(2).Score)
	assert.Equal(t, 25.0, h.player(3).Score)
	assert.Equal(t, 0.0, h.player(4).Score)

	// Falling back does not lower the score
	h.world.bodies[1].pos = mgl64.Vec2{50, 448}
	h.tick(1)
	assert.Equal(t, 10.0, h.player(1).Score)

	for i := 0; i < 200 && h.match().State == netconfig.MatchGoing; i++ {
		h.tick(1)
	}
	require.Equal(t, netconfig.MatchEnded, h.match().State)

	require.Len(t, eventsOf[messages.TimeOutEvent](h.log), 1)
	ended := eventsOf[messages.MatchEndedEvent](h.log)
	require.Len(t, ended, 1)
	assert.True(t, ended[0].HasWinner)
	assert.Equal(t, netconfig.PlayerID(2), ended[0].Winner, "tie goes to store order")
	assert.False(t, ended[0].ByZone)
	assert.Greater(t, ended[0].Seq, eventsOf[messages.TimeOutEvent](h.log)[0].Seq)

	// Reset
	m = h.match()
	assert.Nil(t, m.Participants)
	assert.Equal(t, netconfig.PlayerID(2), m.Winner)
	assert.False(t, m.MatchTimer.IsRunning())
	for _, id := range []netconfig.PlayerID{1, 2, 3, 4} {
		p := h.player(id)
		assert.False(t, p.Ready)
		assert.Equal(t, p.MaxHealth, p.Health)
		assert.Equal(t, h.course.LobbyPivot.Y, h.world.bodies[id].pos.Y())
	}
	assert.Len(t, eventsOf[messages.CourseResetEvent](h.log), 1)
	assert.False(t, h.session.Terrain().Broken(1))
	assert.False(t, h.world.blocks[1].broken)
	assert.Zero(t, h.session.Pickups().Len())
	assert.Equal(t, netconfig.PhaseLobby, h.match().Phase())
}

func TestZoneBeatsTimeout(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Match.Duration = 100 * time.Millisecond })
	h.join(1, 2)
	h.world.zone[2] = true

	h.startMatch()
	h.tick(1)

	assert.Empty(t, eventsOf[messages.TimeOutEvent](h.log))
	ended := eventsOf[messages.MatchEndedEvent](h.log)
	require.Len(t, ended, 1)
	assert.True(t, ended[0].ByZone)
	assert.Equal(t, netconfig.PlayerID(2), ended[0].Winner)
}

func TestZoneIgnoresLateJoiners(t *testing.T) {
	h := newHarness(t, longMatch)
	h.join(1)
	h.startMatch()

	h.join(3)
	h.world.zone[3] = true
	h.tick(5)
	assert.Equal(t, netconfig.MatchGoing, h.match().State)
	assert.False(t, h.match().IsParticipant(3))
}

func TestTimeoutWithoutParticipantsHasNoWinner(t *testing.T) {
	h := newHarness(t)
	h.join(1)
	assert.True(t, opt.IsNone(h.session.Lifecycle().TimeoutWinner()))
}

func TestCountdownNotRestartedByLaterReadies(t *testing.T) {
	h := newHarness(t)
	h.join(1, 2)

	h.session.SetReady(1)
	h.tick(1)
	h.session.SetReady(2)
	assert.Len(t, eventsOf[messages.CountdownEvent](h.log), 2)
	assert.Equal(t, 2, h.match().Countdown)
	assert.Equal(t, netconfig.PhaseCountdown, h.match().Phase())
}

func TestUnreadyPlayersStayInLobby(t *testing.T) {
	h := newHarness(t)
	h.join(1, 2)

	h.session.SetReady(1)
	h.tick(h.cfg.Match.CountdownSteps + 1)

	m := h.match()
	require.Equal(t, netconfig.MatchGoing, m.State)
	assert.Equal(t, []netconfig.PlayerID{1}, m.Participants)
	assert.Equal(t, h.course.LobbyPivot.Y, h.world.bodies[2].pos.Y())
}

func TestReadyDuringMatchIgnored(t *testing.T) {
	h := newHarness(t, longMatch)
	h.join(1)
	h.startMatch()
	countdowns := len(eventsOf[messages.CountdownEvent](h.log))

	h.join(2)
	h.session.SetReady(2)
	h.tick(1)

	assert.False(t, h.player(2).Ready)
	assert.Len(t, eventsOf[messages.CountdownEvent](h.log), countdowns)
	assert.Zero(t, h.match().Countdown)
}

func TestJoinRejectedAtCapacity(t *testing.T) {
	h := newHarness(t)
	h.join(1, 2, 3, 4)

	err := h.session.Join(5, "E")
	assert.ErrorIs(t, err, replica.ErrCapacity)
	assert.Equal(t, 4, h.session.Store().Len())
	assert.Len(t, h.world.bodies, 4)
	assert.Equal(t, []netconfig.PlayerID{1, 2, 3, 4}, h.session.Store().IDs())
}

func TestLeaveMidMatch(t *testing.T) {
	h := newHarness(t, longMatch)
	h.join(1, 2)
	h.startMatch()

	h.session.Leave(2)
	h.tick(1)

	m := h.match()
	assert.Equal(t, netconfig.MatchGoing, m.State)
	assert.Equal(t, []netconfig.PlayerID{1}, m.Participants)
	assert.NotContains(t, h.world.bodies, netconfig.PlayerID(2))
	assert.False(t, h.session.PushInput(2, netinput.Frame{Sequence: 99}))
}

func TestEmptySessionIsFrozen(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Match.Duration = 100 * time.Millisecond })
	h.join(1)
	h.startMatch()

	h.session.Leave(1)
	h.tick(20)

	assert.Equal(t, netconfig.MatchGoing, h.match().State)
	assert.Empty(t, eventsOf[messages.TimeOutEvent](h.log))
}

func TestEmptySessionSpawnsNoPickups(t *testing.T) {
	h := newHarness(t, longMatch)
	h.join(1)
	h.startMatch()
	require.Equal(t, 1, h.session.Pickups().Len())

	h.session.Leave(1)
	h.tick(600)

	assert.Equal(t, netconfig.MatchGoing, h.match().State)
	assert.Equal(t, 1, h.session.Pickups().Len())
	assert.Len(t, eventsOf[messages.PickupSpawnedEvent](h.log), 1)
}

func TestPickupAdjustsRemainingTime(t *testing.T) {
	h := newHarness(t, longMatch)
	h.join(1)
	h.startMatch()

	data := netcomponents.NetPickupData{ID: 9, DeltaSeconds: 10, DecreaseChance: 0.3}
	clock := h.session.Clock()
	for i := 0; i < 6; i++ {
		before := h.match().MatchTimer.Remaining(clock).Value
		require.True(t, h.session.Lifecycle().ApplyPickup(data, 1))
		after := h.match().MatchTimer.Remaining(clock).Value

		taken := eventsOf[messages.PickupTakenEvent](h.log)
		require.Len(t, taken, i+1)
		ev := taken[i]
		if ev.Decreased {
			want := before - 10*time.Second
			if want < 0 {
				want = 0
			}
			assert.Equal(t, want, after)
		} else {
			assert.Equal(t, before+10*time.Second, after)
		}
	}
}

func TestPickupIgnoredOutsideMatch(t *testing.T) {
	h := newHarness(t)
	h.join(1)

	ok := h.session.Lifecycle().ApplyPickup(netcomponents.NetPickupData{ID: 1, DeltaSeconds: 10}, 1)
	assert.False(t, ok)
	assert.Empty(t, eventsOf[messages.PickupTakenEvent](h.log))
}

func TestPickupTakenOnContact(t *testing.T) {
	h := newHarness(t, longMatch)
	h.join(1, 2)
	h.startMatch()

	spawned := eventsOf[messages.PickupSpawnedEvent](h.log)
	require.Len(t, spawned, 1)
	assert.Equal(t, h.course.PickupStart.X, spawned[0].X)
	require.Equal(t, 1, h.session.Pickups().Len())

	// Both touch it; the first in store order takes it
	start := mgl64.Vec2{h.course.PickupStart.X, h.course.PickupStart.Y}
	h.world.bodies[1].pos = start
	h.world.bodies[2].pos = start
	h.tick(1)

	taken := eventsOf[messages.PickupTakenEvent](h.log)
	require.Len(t, taken, 1)
	assert.Equal(t, netconfig.PlayerID(1), taken[0].Player)
	assert.Equal(t, spawned[0].Pickup, taken[0].Pickup)
	assert.Zero(t, h.session.Pickups().Len())

	h.tick(3)
	assert.Len(t, eventsOf[messages.PickupTakenEvent](h.log), 1)
}

func TestPickupsSpawnPeriodically(t *testing.T) {
	h := newHarness(t, longMatch)
	h.join(1)
	h.startMatch()

	h.tick(99)
	assert.Len(t, eventsOf[messages.PickupSpawnedEvent](h.log), 1)
	h.tick(1)
	spawned := eventsOf[messages.PickupSpawnedEvent](h.log)
	require.Len(t, spawned, 2)
	assert.Equal(t, 2, h.session.Pickups().Len())

	pivot := h.course.PickupPivot
	assert.InDelta(t, pivot.X, spawned[1].X, pivot.Radius)
	assert.LessOrEqual(t, spawned[1].Y, pivot.Y-pivot.MinHeight)
	assert.GreaterOrEqual(t, spawned[1].Y, pivot.Y-pivot.MaxHeight)
}

func TestMatchWithoutCourseNeverStarts(t *testing.T) {
	cfg := testConfig()
	world := newFakeWorld(testCourse())
	s := NewSession(cfg, nil, world)
	require.NoError(t, s.Join(1, "A"))

	s.SetReady(1)
	for i := 0; i < cfg.Match.CountdownSteps+3; i++ {
		s.Tick()
	}
	m := s.Store().Match()
	assert.Equal(t, netconfig.MatchEnded, m.State)
	assert.False(t, m.LobbyReady)
}
