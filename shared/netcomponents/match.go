package netcomponents

import (
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/yohamta/donburi"
)

// NetMatchData is the session singleton.
type NetMatchData struct {
	State    netconfig.MatchState
	Tick     ticktimer.Tick
	TickRate int

	MatchTimer ticktimer.Timer // running only while Going

	// Countdown is the number of steps still to show; zero when idle.
	Countdown      int
	CountdownTimer ticktimer.Timer
	LobbyReady     bool

	Winner       netconfig.PlayerID
	HasWinner    bool
	Participants []netconfig.PlayerID

	Digest uint64 // player table digest for this tick
}

var NetMatch = donburi.NewComponentType[NetMatchData]()

// Clock is the authority's clock as of the tick this state was written.
func (m NetMatchData) Clock() ticktimer.Clock {
	return ticktimer.At(m.Tick, m.TickRate)
}

// Phase folds the countdown sub-phase into the match state.
func (m NetMatchData) Phase() netconfig.Phase {
	switch {
	case m.State == netconfig.MatchGoing:
		return netconfig.PhaseGoing
	case m.Countdown > 0 || m.LobbyReady:
		return netconfig.PhaseCountdown
	default:
		return netconfig.PhaseLobby
	}
}

// IsParticipant reports whether id was snapshotted into the current match.
func (m NetMatchData) IsParticipant(id netconfig.PlayerID) bool {
	for _, p := range m.Participants {
		if p == id {
			return true
		}
	}
	return false
}
