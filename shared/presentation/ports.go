// Package presentation defines the notification ports the simulation drives
// and the helpers that turn replicated state into the rows they display. No
// implementation here renders anything.
package presentation

import (
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
)

// TimerView is the match timer as displayed.
type TimerView struct {
	Text  string
	Alert bool
}

// LeaderboardRow is one line of the in-match leaderboard.
type LeaderboardRow struct {
	Player netconfig.PlayerID
	Name   string
	Score  float64
	Local  bool
}

// PlayerRow is one line of the lobby player table.
type PlayerRow struct {
	Player netconfig.PlayerID
	Name   string
	Ready  bool
}

// Presenter receives UI notifications. It never feeds back into the
// simulation.
type Presenter interface {
	SetLobbyText(text string)
	SetCountdown(value int)
	SetTimeOut(visible bool)
	SetTimer(view TimerView)
	SetLeaderboard(rows []LeaderboardRow)
	SetPlayerTable(rows []PlayerRow)
	SetCooldowns(fractions [netconfig.AbilityCount]float64)
	SetWinner(name string, hasWinner bool)
	ShowStatus(msg string)
	AbilityEffect(ev messages.AbilityEvent)
}

// Audio receives fire-and-forget cues.
type Audio interface {
	Play(sound netconfig.Sound)
}

// NopAudio discards every cue.
type NopAudio struct{}

func (NopAudio) Play(netconfig.Sound) {}
