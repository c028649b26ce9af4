package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/server/core"
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/protocol"

	"github.com/rs/zerolog/log"
)

func loadCourse(path string) (*leveldata.Course, error) {
	course, err := leveldata.LoadCourse(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if err := course.Validate(); err != nil {
		// Missing markers degrade to defaults; the course is still playable
		log.Warn().Err(err).Strs("missing", course.Missing).Msg("course is incomplete")
	}
	return course, nil
}

func serve(configs []string) error {
	cfg, err := config.Process(configs)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if CLI.Port != 0 {
		cfg.Server.Port = CLI.Port
	}
	if CLI.TickRate > 0 {
		cfg.Server.TickRate = CLI.TickRate
	}
	if CLI.Course != "" {
		cfg.Server.Course = CLI.Course
	}

	if err := protocol.RegisterComponents(); err != nil {
		return fmt.Errorf("failed to register components: %w", err)
	}

	course, err := loadCourse(cfg.Server.Course)
	if err != nil {
		log.Warn().Err(err).Str("course", cfg.Server.Course).Msg("running without a course")
		course = nil
	}

	server := core.NewServer(cfg, course)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info().Msg("Shutting down server...")
		server.Stop()
		os.Exit(0)
	}()

	log.Info().
		Str("name", cfg.Server.Name).
		Uint("port", cfg.Server.Port).
		Int("tick_rate", cfg.Server.TickRate).
		Int("max_players", cfg.Server.MaxPlayers).
		Str("version", cfg.Server.Version).
		Msg("Starting server")

	return server.Start()
}
