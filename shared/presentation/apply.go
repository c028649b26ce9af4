package presentation

import (
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/rs/zerolog"
)

// NameFunc resolves a player id to a display name.
type NameFunc func(id netconfig.PlayerID) string

// Apply routes one broadcast event to the presenter and audio ports. Events
// without a visible or audible effect are ignored.
func Apply(ev messages.Event, names NameFunc, p Presenter, a Audio) {
	switch e := ev.(type) {
	case messages.CountdownEvent:
		p.SetCountdown(e.Value)
		p.SetLobbyText(CountdownText(e.Value))
	case messages.MatchStartedEvent:
		p.SetCountdown(0)
		p.SetLobbyText("")
		p.SetTimeOut(false)
		p.SetWinner("", false)
		a.Play(netconfig.SoundStart)
		a.Play(netconfig.SoundMusicStart)
	case messages.AbilityEvent:
		p.AbilityEffect(e)
		a.Play(netconfig.AbilitySound(e.Ability))
	case messages.BlockBrokenEvent:
		// The break ability event that precedes it already played the cue
	case messages.PlayerDiedEvent:
		a.Play(netconfig.SoundDeath)
		p.ShowStatus(names(e.Player) + " died")
	case messages.PickupTakenEvent:
		a.Play(netconfig.SoundPickup)
		if e.Decreased {
			p.ShowStatus(names(e.Player) + " lost time")
		} else {
			p.ShowStatus(names(e.Player) + " gained time")
		}
	case messages.TimeOutEvent:
		p.SetTimeOut(true)
		a.Play(netconfig.SoundTimeout)
	case messages.MatchEndedEvent:
		a.Play(netconfig.SoundMusicStop)
		if e.HasWinner {
			p.SetWinner(names(e.Winner), true)
			a.Play(netconfig.SoundWin)
		} else {
			p.SetWinner("", false)
		}
	case messages.CourseResetEvent:
		p.SetLobbyText(LobbyText(netconfig.PhaseLobby, 0))
	}
}

// LogPresenter writes notifications to a logger. The headless client and
// tests use it in place of a HUD.
type LogPresenter struct {
	Log zerolog.Logger
}

func (l LogPresenter) SetLobbyText(text string) {
	if text != "" {
		l.Log.Info().Str("lobby", text).Msg("lobby text")
	}
}

func (l LogPresenter) SetCountdown(value int) {
	l.Log.Debug().Int("countdown", value).Msg("countdown")
}

func (l LogPresenter) SetTimeOut(visible bool) {
	if visible {
		l.Log.Info().Msg("time out")
	}
}

func (l LogPresenter) SetTimer(view TimerView) {
	l.Log.Debug().Str("timer", view.Text).Bool("alert", view.Alert).Msg("timer")
}

func (l LogPresenter) SetLeaderboard(rows []LeaderboardRow) {
	arr := zerolog.Arr()
	for _, r := range rows {
		arr.Dict(zerolog.Dict().Str("name", r.Name).Float64("score", r.Score))
	}
	l.Log.Debug().Array("leaderboard", arr).Msg("leaderboard")
}

func (l LogPresenter) SetPlayerTable(rows []PlayerRow) {
	arr := zerolog.Arr()
	for _, r := range rows {
		arr.Dict(zerolog.Dict().Str("name", r.Name).Bool("ready", r.Ready))
	}
	l.Log.Info().Array("players", arr).Msg("player table")
}

func (l LogPresenter) SetCooldowns([netconfig.AbilityCount]float64) {}

func (l LogPresenter) SetWinner(name string, hasWinner bool) {
	if hasWinner {
		l.Log.Info().Str("winner", name).Msg("match won")
	}
}

func (l LogPresenter) ShowStatus(msg string) {
	l.Log.Info().Msg(msg)
}

func (l LogPresenter) AbilityEffect(ev messages.AbilityEvent) {
	l.Log.Debug().Uint32("player", uint32(ev.Player)).Stringer("ability", ev.Ability).Msg("ability")
}
