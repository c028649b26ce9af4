package main

import (
	"fmt"
	"os"
	"time"

	"github.com/SpeedyZooba/blocky-climb/config"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Debug bool `help:"Whether to enable debug logging."`

	Port     uint   `help:"Override the listen port." default:"0"`
	TickRate int    `help:"Override the simulation tick rate." name:"tick-rate" default:"0"`
	Course   string `help:"Override the course TMX path."`

	Serve struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files layered over the defaults." type:"existingfile"`
	} `cmd:"" default:"withargs" help:"Start the dedicated server."`

	Config struct {
	} `cmd:"" help:"Write the default configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("blocky-server"),
		kong.Description("authoritative server for Blocky Climb"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	switch ctx.Command() {
	case "serve", "serve <configs>":
		if err := serve(CLI.Serve.Configs); err != nil {
			writeError(err)
		}
	case "config":
		os.Stdout.Write(config.DEFAULT)
	}
}
