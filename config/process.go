package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DEFAULT []byte

var (
	ErrTickRate   = errors.New("server.tickRate must be positive")
	ErrCapacity   = errors.New("server.maxPlayers must be between 1 and 64")
	ErrChance     = errors.New("pickup.decreaseChance must be within [0, 1]")
	ErrCooldown   = errors.New("ability cooldowns must not be negative")
	ErrCountdown  = errors.New("match.countdownSteps must not be negative")
	ErrMatchTimer = errors.New("match.duration must be positive")
)

// Process decodes the embedded defaults and then each file in order over
// them, so later files override earlier ones field by field.
func Process(paths []string) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(DEFAULT, config); err != nil {
		return nil, fmt.Errorf("invalid default config: %w", err)
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("could not merge config file %s: %w", path, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns the embedded defaults. It panics if they fail to decode,
// which only happens when default.yaml itself is broken.
func Default() Config {
	config, err := Process(nil)
	if err != nil {
		panic(err)
	}
	return *config
}

func (c *Config) Validate() error {
	if c.Server.TickRate <= 0 {
		return ErrTickRate
	}
	if c.Server.MaxPlayers < 1 || c.Server.MaxPlayers > 64 {
		return ErrCapacity
	}
	if c.Pickup.DecreaseChance < 0 || c.Pickup.DecreaseChance > 1 {
		return ErrChance
	}
	if c.Match.Duration <= 0 {
		return ErrMatchTimer
	}
	if c.Match.CountdownSteps < 0 {
		return ErrCountdown
	}
	a := c.Abilities
	for _, d := range []time.Duration{
		a.DoubleJumpCooldown, a.GrappleCooldown, a.GlideCooldown, a.BreakCooldown, a.LaserCooldown,
	} {
		if d < 0 {
			return ErrCooldown
		}
	}
	return nil
}
