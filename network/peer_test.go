package network

import (
	"testing"
	"time"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/SpeedyZooba/blocky-climb/shared/presentation"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	id     netconfig.PlayerID
	rate   int
	events []messages.Event
	inputs []netinput.Frame
	ready  int
}

func (f *fakeTransport) PlayerID() netconfig.PlayerID         { return f.id }
func (f *fakeTransport) TickRate() int                        { return f.rate }
func (f *fakeTransport) LatestSnapshot() *esync.WorldSnapshot { return nil }

func (f *fakeTransport) SendInput(frame netinput.Frame) error {
	f.inputs = append(f.inputs, frame)
	return nil
}

func (f *fakeTransport) SendReady() error {
	f.ready++
	return nil
}

func (f *fakeTransport) DrainEvents() []messages.Event {
	out := f.events
	f.events = nil
	return out
}

type hud struct {
	presentation.LogPresenter
	lobby       []string
	countdowns  []int
	timers      []presentation.TimerView
	leaderboard []presentation.LeaderboardRow
	table       []presentation.PlayerRow
	cooldowns   int
}

func (h *hud) SetLobbyText(text string)                          { h.lobby = append(h.lobby, text) }
func (h *hud) SetCountdown(v int)                                { h.countdowns = append(h.countdowns, v) }
func (h *hud) SetTimer(v presentation.TimerView)                 { h.timers = append(h.timers, v) }
func (h *hud) SetLeaderboard(rows []presentation.LeaderboardRow) { h.leaderboard = rows }
func (h *hud) SetPlayerTable(rows []presentation.PlayerRow)      { h.table = rows }
func (h *hud) SetCooldowns([netconfig.AbilityCount]float64)      { h.cooldowns++ }

type cues []netconfig.Sound

func (c *cues) Play(s netconfig.Sound) { *c = append(*c, s) }

func newTestPeer(id netconfig.PlayerID) (*Peer, *fakeTransport, *hud, *cues) {
	cfg := config.Default()
	tr := &fakeTransport{id: id, rate: 20}
	h := &hud{LogPresenter: presentation.LogPresenter{Log: zerolog.Nop()}}
	a := &cues{}
	return NewPeer(&cfg, tr, h, a), tr, h, a
}

// withMatch edits the match singleton of a snapshot built by authoritySnapshot.
func withMatch(snap []SnapshotEntity, fn func(m *netcomponents.NetMatchData)) []SnapshotEntity {
	m := snap[0].Components[0].(netcomponents.NetMatchData)
	fn(&m)
	snap[0].Components[0] = m
	return snap
}

func withPlayer(snap []SnapshotEntity, id netconfig.PlayerID, fn func(p *netcomponents.NetPlayerData)) []SnapshotEntity {
	for i := range snap {
		for j, c := range snap[i].Components {
			if p, ok := c.(netcomponents.NetPlayerData); ok && p.ID == id {
				fn(&p)
				snap[i].Components[j] = p
			}
		}
	}
	return snap
}

func TestPeerSendsOneFramePerTick(t *testing.T) {
	p, tr, _, _ := newTestPeer(1)

	p.Update(at(0))
	p.Update(at(10))
	require.Len(t, tr.inputs, 1)

	p.Update(at(50))
	require.Len(t, tr.inputs, 2)
	assert.Equal(t, uint32(2), tr.inputs[1].Sequence)

	p.Update(at(500))
	require.Len(t, tr.inputs, 3, "a stall sends one frame, not a burst")
	p.Update(at(520))
	assert.Len(t, tr.inputs, 3)
	p.Update(at(550))
	assert.Len(t, tr.inputs, 4)
}

func TestPeerWaitsForJoin(t *testing.T) {
	p, tr, _, _ := newTestPeer(netconfig.NoPlayer)
	p.Update(at(0))
	p.Update(at(100))
	assert.Empty(t, tr.inputs)

	p.Ready()
	assert.Equal(t, 1, tr.ready)
}

func TestPeerReleasesEventsAtTheirTick(t *testing.T) {
	p, tr, h, _ := newTestPeer(1)
	p.Mirror().Apply(authoritySnapshot(t, 3, "ada"))
	p.Refresh()

	tr.events = []messages.Event{
		messages.CountdownEvent{EventHeader: messages.EventHeader{Seq: 1, Tick: 5}, Value: 3},
	}
	p.Update(at(0))
	assert.Empty(t, h.countdowns)

	p.Mirror().Apply(authoritySnapshot(t, 5, "ada"))
	p.Update(at(10))
	assert.Equal(t, []int{3}, h.countdowns)
	assert.Contains(t, h.lobby, "The game will begin in 3...")
}

func TestPeerRefreshLobby(t *testing.T) {
	p, _, h, _ := newTestPeer(1)
	snap := withPlayer(authoritySnapshot(t, 10, "ada", "bob"), 2, func(pl *netcomponents.NetPlayerData) {
		pl.Ready = true
	})
	p.Mirror().Apply(snap)
	p.Refresh()

	assert.Equal(t, []string{"Press R when you are ready"}, h.lobby)
	require.Len(t, h.table, 2)
	assert.False(t, h.table[0].Ready)
	assert.True(t, h.table[1].Ready)
	assert.Equal(t, 1, h.cooldowns)

	p.Mirror().Apply(authoritySnapshot(t, 11, "ada", "bob"))
	p.Refresh()
	assert.Len(t, h.lobby, 1, "phase unchanged")
	assert.False(t, h.table[1].Ready, "table refreshed")
}

func TestPeerRefreshMatchTimer(t *testing.T) {
	p, _, h, a := newTestPeer(1)
	going := func(tick ticktimer.Tick) []SnapshotEntity {
		snap := authoritySnapshot(t, tick, "ada", "bob")
		snap = withPlayer(snap, 2, func(pl *netcomponents.NetPlayerData) { pl.Score = 3 })
		return withMatch(snap, func(m *netcomponents.NetMatchData) {
			m.State = netconfig.MatchGoing
			m.MatchTimer = ticktimer.FromDuration(ticktimer.At(100, 20), 10*time.Second)
		})
	}

	p.Mirror().Apply(going(100))
	p.Refresh()
	require.Len(t, h.timers, 1)
	assert.Equal(t, presentation.TimerView{Text: "00:10", Alert: true}, h.timers[0])
	assert.Equal(t, cues{netconfig.SoundTimerAlert}, *a)
	require.Len(t, h.leaderboard, 2)
	assert.Equal(t, netconfig.PlayerID(2), h.leaderboard[0].Player)
	assert.True(t, h.leaderboard[1].Local)

	p.Mirror().Apply(going(110))
	p.Refresh()
	assert.Len(t, h.timers, 1, "same second")

	p.Mirror().Apply(going(120))
	p.Refresh()
	require.Len(t, h.timers, 2)
	assert.Equal(t, presentation.TimerView{Text: "00:09"}, h.timers[1])
	assert.Len(t, *a, 1)
}

func TestPeerConfirmsLocalLook(t *testing.T) {
	p, tr, _, _ := newTestPeer(1)
	p.Input().Add(at(0), Sample{Look: mgl64.Vec2{4, 0}})
	p.Update(at(0))
	p.Input().Add(at(1), Sample{Look: mgl64.Vec2{2, 0}})
	p.Update(at(50))
	require.Len(t, tr.inputs, 2)

	// the first sample is still inside its smoothing window at the first flush
	assert.Zero(t, tr.inputs[0].Look.X())
	assert.InDelta(t, 6, tr.inputs[1].Look.X(), 1e-9)
	assert.InDelta(t, 6, p.Look().Pitch, 1e-9)

	snap := withPlayer(authoritySnapshot(t, 20, "ada"), 1, func(pl *netcomponents.NetPlayerData) {
		pl.LastInputSeq = 2
		pl.Look = gamemath.LookRotation{Pitch: 10}
	})
	p.Mirror().Apply(snap)
	p.Refresh()
	assert.Equal(t, uint32(2), p.Predictor().Acknowledged())
	assert.InDelta(t, 10, p.Look().Pitch, 1e-9)
}
