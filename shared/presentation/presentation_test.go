package presentation

import (
	"testing"
	"time"

	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	LogPresenter
	lobby   []string
	winner  string
	timeout bool
	effects int
}

func (r *recorder) SetLobbyText(text string)                { r.lobby = append(r.lobby, text) }
func (r *recorder) SetWinner(name string, has bool)         { r.winner = name }
func (r *recorder) SetTimeOut(v bool)                       { r.timeout = v }
func (r *recorder) AbilityEffect(ev messages.AbilityEvent) { r.effects++ }

type cues []netconfig.Sound

func (c *cues) Play(s netconfig.Sound) { *c = append(*c, s) }

func TestLeaderboardStable(t *testing.T) {
	rows := Leaderboard([]netcomponents.NetPlayerData{
		{ID: 1, Nickname: "a", Score: 10},
		{ID: 2, Nickname: "b", Score: 25},
		{ID: 3, Nickname: "c", Score: 25},
	}, 3)

	assert.Equal(t, []netconfig.PlayerID{2, 3, 1}, []netconfig.PlayerID{rows[0].Player, rows[1].Player, rows[2].Player})
	assert.True(t, rows[1].Local)
}

func TestTimerView(t *testing.T) {
	assert.Equal(t, TimerView{Text: "02:00"}, Timer(120))
	assert.Equal(t, TimerView{Text: "00:10", Alert: true}, Timer(10))
	assert.Equal(t, TimerView{Text: "00:09"}, Timer(9))
	assert.Equal(t, 2, RemainingSeconds(1500*time.Millisecond))
	assert.Equal(t, 0, RemainingSeconds(-time.Second))
}

func TestLobbyText(t *testing.T) {
	assert.Equal(t, "The game will begin in 3...", LobbyText(netconfig.PhaseCountdown, 3))
	assert.Empty(t, LobbyText(netconfig.PhaseGoing, 0))
}

func TestCooldownFractions(t *testing.T) {
	clock := ticktimer.NewSimClock(10)
	var p netcomponents.NetPlayerData
	p.Cooldowns[netconfig.AbilityLaser] = ticktimer.FromDuration(clock, time.Second)
	p.Gliding, p.GlideLeft = true, 0.25

	var totals [netconfig.AbilityCount]time.Duration
	totals[netconfig.AbilityLaser] = time.Second

	clock.Advance()
	clock.Advance()
	out := Cooldowns(p, clock, totals)
	assert.InDelta(t, 0.8, out[netconfig.AbilityLaser], 1e-9)
	assert.Equal(t, 0.25, out[netconfig.AbilityGlide])
	assert.Zero(t, out[netconfig.AbilityGrapple])
}

func TestApplyRoutesCues(t *testing.T) {
	r := &recorder{LogPresenter: LogPresenter{Log: zerolog.Nop()}}
	var played cues
	names := func(id netconfig.PlayerID) string { return map[netconfig.PlayerID]string{4: "dana"}[id] }

	Apply(messages.AbilityEvent{Player: 4, Ability: netconfig.AbilityLaser}, names, r, &played)
	Apply(messages.TimeOutEvent{}, names, r, &played)
	Apply(messages.MatchEndedEvent{Winner: 4, HasWinner: true}, names, r, &played)

	assert.Equal(t, 1, r.effects)
	assert.True(t, r.timeout)
	assert.Equal(t, "dana", r.winner)
	assert.Equal(t, cues{netconfig.SoundLaser, netconfig.SoundTimeout, netconfig.SoundMusicStop, netconfig.SoundWin}, played)
}

func TestBreakCueOncePerBlock(t *testing.T) {
	r := &recorder{LogPresenter: LogPresenter{Log: zerolog.Nop()}}
	var played cues
	names := func(netconfig.PlayerID) string { return "" }

	Apply(messages.AbilityEvent{Player: 1, Ability: netconfig.AbilityBreak, HitBlockID: 3}, names, r, &played)
	Apply(messages.BlockBrokenEvent{Block: 3}, names, r, &played)

	assert.Equal(t, cues{netconfig.SoundBreak}, played)
}
