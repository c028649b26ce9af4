package core

import (
	"time"

	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Ticker is what the loop drives once per tick.
type Ticker interface {
	ProcessCommands()
}

type GameLoop struct {
	target   Ticker
	tickRate int
	stopChan chan struct{}
	sync     func() error
	log      zerolog.Logger
}

func NewGameLoop(target Ticker, tickRate int) *GameLoop {
	return &GameLoop{
		target:   target,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
		sync:     srvsync.DoSync,
		log:      log.With().Str("component", "loop").Logger(),
	}
}

func (g *GameLoop) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	g.log.Info().Int("tick_rate", g.tickRate).Msg("Game loop started")

	for {
		select {
		case <-g.stopChan:
			g.log.Info().Msg("Game loop stopped")
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
}

func (g *GameLoop) tick() {
	g.target.ProcessCommands()

	if err := g.sync(); err != nil {
		g.log.Error().Err(err).Msg("sync error")
	}
}
