package main

import (
	"fmt"
	"os"
	"time"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/fonts"
	"github.com/SpeedyZooba/blocky-climb/network"
	"github.com/SpeedyZooba/blocky-climb/shared/protocol"
	"github.com/SpeedyZooba/blocky-climb/systems"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const appName = "blocky-climb"

var CLI struct {
	Debug bool `help:"Whether to enable debug logging and the TPS overlay."`

	Address string  `help:"Server address as host:port." default:"localhost:7373"`
	Name    string  `help:"Nickname shown to other players." default:"climber"`
	Volume  float64 `help:"Cue volume between 0 and 1." default:"0.5"`

	Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files layered over the defaults." type:"existingfile"`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	kong.Parse(&CLI,
		kong.Name("blocky-climb"),
		kong.Description("Blocky Climb game client"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if err := run(); err != nil {
		writeError(err)
	}
}

func run() error {
	cfg, err := config.Process(CLI.Configs)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := protocol.RegisterComponents(); err != nil {
		return fmt.Errorf("failed to register components: %w", err)
	}
	if err := fonts.LoadDefaults(); err != nil {
		// Text still renders with the bitmap fallback
		log.Warn().Err(err).Msg("could not load fonts")
	}

	store, err := systems.OpenSettings(appName)
	if err != nil {
		log.Warn().Err(err).Msg("settings will not be saved")
	}

	client := network.NewClient()
	game := NewGame(cfg, client, store)
	client.Connect(CLI.Address, cfg.Server.Version, CLI.Name)
	defer client.Disconnect()

	ebiten.SetWindowSize(screenWidth*2, screenHeight*2)
	ebiten.SetWindowTitle("Blocky Climb")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("game loop: %w", err)
	}
	return nil
}
