package presentation

import (
	"fmt"
	"sort"
	"time"

	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
)

// AlertThreshold is the remaining time at which the timer starts blinking.
const AlertThreshold = 10

// Leaderboard orders players by descending score. Equal scores keep the
// order they were given in.
func Leaderboard(players []netcomponents.NetPlayerData, local netconfig.PlayerID) []LeaderboardRow {
	rows := make([]LeaderboardRow, len(players))
	for i, p := range players {
		rows[i] = LeaderboardRow{Player: p.ID, Name: p.Nickname, Score: p.Score, Local: p.ID == local}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	return rows
}

// PlayerTable lists names and ready flags in join order.
func PlayerTable(players []netcomponents.NetPlayerData) []PlayerRow {
	rows := make([]PlayerRow, len(players))
	for i, p := range players {
		rows[i] = PlayerRow{Player: p.ID, Name: p.Nickname, Ready: p.Ready}
	}
	return rows
}

// Timer formats whole remaining seconds. At or below AlertThreshold the alert
// flag alternates every second, on for even seconds.
func Timer(seconds int) TimerView {
	m, s := gamemath.MinutesSeconds(seconds)
	return TimerView{
		Text:  fmt.Sprintf("%02d:%02d", m, s),
		Alert: seconds <= AlertThreshold && seconds%2 == 0,
	}
}

// RemainingSeconds rounds a remaining duration up to whole seconds.
func RemainingSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// CountdownText is the lobby banner for one countdown step.
func CountdownText(value int) string {
	return fmt.Sprintf("The game will begin in %d...", value)
}

// LobbyText is the banner shown for a lobby phase.
func LobbyText(phase netconfig.Phase, countdown int) string {
	switch phase {
	case netconfig.PhaseCountdown:
		if countdown > 0 {
			return CountdownText(countdown)
		}
		return "Starting..."
	case netconfig.PhaseGoing:
		return ""
	}
	return "Press R when you are ready"
}

// Cooldowns returns remaining/total per ability in [0, 1]. While gliding the
// glide slot shows the resource left instead.
func Cooldowns(p netcomponents.NetPlayerData, c ticktimer.Clock, totals [netconfig.AbilityCount]time.Duration) [netconfig.AbilityCount]float64 {
	var out [netconfig.AbilityCount]float64
	for i := range out {
		out[i] = p.Cooldowns[i].Fraction(c, totals[i])
	}
	if p.Gliding {
		out[netconfig.AbilityGlide] = p.GlideLeft
	}
	return out
}
