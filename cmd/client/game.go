package main

import (
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/network"
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/systems"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	screenWidth  = 640
	screenHeight = 360
)

var background = color.RGBA{24, 26, 32, 255}

// Game drives one client: it samples input, steps the peer and draws the
// mirrored course.
type Game struct {
	cfg    *config.Config
	client *network.Client
	peer   *network.Peer

	sampler  *systems.Sampler
	settings systems.InputSettings
	store    *systems.SettingsStore

	hud    *systems.HUD
	camera systems.Camera

	course      *leveldata.Course
	courseTried bool
	lastState   network.ClientState

	log zerolog.Logger
}

func NewGame(cfg *config.Config, client *network.Client, store *systems.SettingsStore) *Game {
	hud := systems.NewHUD()
	hud.Debug = CLI.Debug

	settings := store.Load(systems.SettingsFromConfig(cfg.Input))
	peer := network.NewPeer(cfg, client, hud, systems.NewSynthAudio(CLI.Volume))
	peer.Input().SetWindow(settings.Window())

	return &Game{
		cfg:      cfg,
		client:   client,
		peer:     peer,
		sampler:  systems.NewSampler(settings),
		settings: settings,
		store:    store,
		hud:      hud,
		log:      log.With().Str("component", "game").Logger(),
	}
}

func (g *Game) Update() error {
	now := time.Now()

	sample, _ := g.sampler.Update()
	g.peer.Input().Add(now, sample)
	if g.sampler.ReadyRequested() {
		g.peer.Ready()
	}
	g.updateSettings()

	g.peer.Update(now)
	g.hud.Update()
	g.watchConnection()
	g.loadCourse()

	if pos, ok := g.peer.Mirror().Store().Position(g.peer.Local()); ok {
		cw, ch := float64(screenWidth), float64(screenHeight)
		if g.course != nil {
			cw, ch = float64(g.course.MapWidth), float64(g.course.MapHeight)
		}
		g.camera.Follow(pos.Vec(), screenWidth, screenHeight, cw, ch)
	}
	return nil
}

func (g *Game) updateSettings() {
	next, changed := systems.AdjustSettings(g.settings)
	if !changed {
		return
	}
	g.settings = next
	g.sampler.SetSettings(next)
	g.peer.Input().SetWindow(next.Window())
	if err := g.store.Save(next); err != nil {
		g.log.Warn().Err(err).Msg("could not save settings")
	}
	g.hud.ShowStatus(settingsLine(next))
}

func (g *Game) watchConnection() {
	state := g.client.State()
	if state == g.lastState {
		return
	}
	g.lastState = state
	switch state {
	case network.StateConnected:
		g.hud.ShowStatus("connected to " + CLI.Address)
	case network.StateJoinedGame:
		g.hud.ShowStatus("joined " + g.client.ServerName() + ", press R when ready")
	case network.StateError:
		if err := g.client.LastError(); err != nil {
			g.hud.ShowStatus(err.Error())
		}
	case network.StateDisconnected:
		g.hud.ShowStatus("disconnected")
	}
}

// loadCourse reads the joined course from disk once so walls and the finish
// zone can be drawn. Blocks and pickups come from snapshots either way.
func (g *Game) loadCourse() {
	path := g.client.Course()
	if g.courseTried || path == "" {
		return
	}
	g.courseTried = true

	course, err := leveldata.LoadCourse(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		g.log.Warn().Err(err).Str("course", path).Msg("course not available locally")
		return
	}
	g.course = course
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	systems.DrawCourse(screen, &g.camera, systems.View{
		Course: g.course,
		Mirror: g.peer.Mirror(),
		Local:  g.peer.Local(),
		Look:   g.peer.Look(),
		Player: g.cfg.Player,
	}, g.hud.Effects())
	g.hud.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func settingsLine(s systems.InputSettings) string {
	line := "sensitivity " + strconv.FormatFloat(s.Sensitivity, 'f', 2, 64)
	if s.InvertPitch {
		line += " (inverted)"
	}
	return line
}
