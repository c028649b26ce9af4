package systems

import (
	"fmt"
	"image/color"

	"github.com/SpeedyZooba/blocky-climb/fonts"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/presentation"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	hudBarWidth  = 60
	hudBarHeight = 6
	hudMargin    = 10

	statusFrames = 180
	effectFrames = 12
	maxStatus    = 4
)

var (
	hudBackground = color.RGBA{40, 40, 40, 255}
	hudReady      = color.RGBA{40, 220, 40, 255}
	hudAlert      = color.RGBA{230, 60, 60, 255}
	hudText       = color.White
)

type timedStatus struct {
	text   string
	frames int
}

type timedEffect struct {
	ev     messages.AbilityEvent
	frames int
}

// HUD is the in-game presenter. Notifications only update its fields; Draw
// renders them each frame.
type HUD struct {
	lobby       string
	countdown   int
	timeout     bool
	timer       presentation.TimerView
	leaderboard []presentation.LeaderboardRow
	table       []presentation.PlayerRow
	cooldowns   [netconfig.AbilityCount]float64
	winner      string
	hasWinner   bool

	status  []timedStatus
	effects []timedEffect

	Debug bool
}

func NewHUD() *HUD {
	return &HUD{}
}

func (h *HUD) SetLobbyText(text string) { h.lobby = text }
func (h *HUD) SetCountdown(value int)   { h.countdown = value }
func (h *HUD) SetTimeOut(visible bool)  { h.timeout = visible }

func (h *HUD) SetTimer(view presentation.TimerView) { h.timer = view }

func (h *HUD) SetLeaderboard(rows []presentation.LeaderboardRow) {
	h.leaderboard = append(h.leaderboard[:0], rows...)
}

func (h *HUD) SetPlayerTable(rows []presentation.PlayerRow) {
	h.table = append(h.table[:0], rows...)
}

func (h *HUD) SetCooldowns(fractions [netconfig.AbilityCount]float64) { h.cooldowns = fractions }

func (h *HUD) SetWinner(name string, hasWinner bool) {
	h.winner, h.hasWinner = name, hasWinner
}

// ShowStatus queues a transient message. Only the newest few are kept.
func (h *HUD) ShowStatus(msg string) {
	h.status = append(h.status, timedStatus{text: msg, frames: statusFrames})
	if len(h.status) > maxStatus {
		h.status = h.status[len(h.status)-maxStatus:]
	}
}

func (h *HUD) AbilityEffect(ev messages.AbilityEvent) {
	h.effects = append(h.effects, timedEffect{ev: ev, frames: effectFrames})
}

// Update ages transient messages and effects by one frame.
func (h *HUD) Update() {
	h.status = age(h.status, func(s *timedStatus) *int { return &s.frames })
	h.effects = age(h.effects, func(e *timedEffect) *int { return &e.frames })
}

func age[T any](items []T, frames func(*T) *int) []T {
	kept := items[:0]
	for i := range items {
		f := frames(&items[i])
		*f--
		if *f > 0 {
			kept = append(kept, items[i])
		}
	}
	return kept
}

// Effects returns the ability effects still visible.
func (h *HUD) Effects() []messages.AbilityEvent {
	out := make([]messages.AbilityEvent, len(h.effects))
	for i, e := range h.effects {
		out[i] = e.ev
	}
	return out
}

// Status returns the transient messages still visible, oldest first.
func (h *HUD) Status() []string {
	out := make([]string, len(h.status))
	for i, s := range h.status {
		out[i] = s.text
	}
	return out
}

func (h *HUD) Draw(screen *ebiten.Image) {
	w := screen.Bounds().Dx()
	face := fonts.HUD.Get()
	small := fonts.Small.Get()

	if h.lobby != "" {
		text.Draw(screen, h.lobby, fonts.Banner.Get(), w/2-len(h.lobby)*5, 60, hudText)
	}
	if h.timer.Text != "" {
		c := color.Color(hudText)
		if h.timer.Alert {
			c = hudAlert
		}
		text.Draw(screen, h.timer.Text, face, w/2-20, 24, c)
	}
	if h.timeout {
		text.Draw(screen, "TIME OUT", fonts.Banner.Get(), w/2-50, 100, hudAlert)
	}
	if h.hasWinner {
		text.Draw(screen, h.winner+" wins!", fonts.Banner.Get(), w/2-60, 140, hudText)
	}

	y := 24
	for i, row := range h.leaderboard {
		line := fmt.Sprintf("%d. %s %.1fm", i+1, row.Name, row.Score)
		c := color.Color(hudText)
		if row.Local {
			c = hudReady
		}
		text.Draw(screen, line, small, w-160, y, c)
		y += 14
	}
	if len(h.leaderboard) == 0 {
		for _, row := range h.table {
			mark := " "
			if row.Ready {
				mark = "*"
			}
			text.Draw(screen, mark+" "+row.Name, small, w-160, y, hudText)
			y += 14
		}
	}

	h.drawCooldowns(screen)

	y = screen.Bounds().Dy() - 20
	for i := len(h.status) - 1; i >= 0; i-- {
		text.Draw(screen, h.status[i].text, small, hudMargin, y, hudText)
		y -= 14
	}

	if h.Debug {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS %.0f FPS %.0f", ebiten.ActualTPS(), ebiten.ActualFPS()), hudMargin, 40)
	}
}

func (h *HUD) drawCooldowns(screen *ebiten.Image) {
	small := fonts.Small.Get()
	for i, f := range h.cooldowns {
		x := float32(hudMargin)
		y := float32(hudMargin + i*(hudBarHeight+12))
		text.Draw(screen, netconfig.Ability(i).String(), small, hudMargin+hudBarWidth+6, int(y)+hudBarHeight, hudText)
		vector.DrawFilledRect(screen, x, y, hudBarWidth, hudBarHeight, hudReady, false)
		if f > 0 {
			vector.DrawFilledRect(screen, x, y, hudBarWidth*float32(f), hudBarHeight, hudBackground, false)
		}
	}
}
