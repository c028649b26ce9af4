package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	// Default config
	config, err := Process([]string{})
	require.NoError(t, err)
	assert.Equal(t, 20, config.Server.TickRate)
	assert.Equal(t, 8, config.Server.MaxPlayers)
	assert.Equal(t, 25*time.Millisecond, config.Input.SmoothingWindow)
	assert.Equal(t, 3, config.Match.CountdownSteps)

	dir := t.TempDir()

	// multiple yaml, later files win field by field
	{
		yaml1 := filepath.Join(dir, "config1.yaml")
		err = os.WriteFile(yaml1, []byte(`
server:
  port: 1234
match:
  duration: 90s
`), 0644)
		require.NoError(t, err)

		yaml2 := filepath.Join(dir, "config2.yaml")
		err = os.WriteFile(yaml2, []byte(`
server:
  name: "Hello, World!"
match:
  duration: 45s
`), 0644)
		require.NoError(t, err)

		config, err = Process([]string{yaml1, yaml2})
		require.NoError(t, err)
		assert.Equal(t, uint(1234), config.Server.Port)
		assert.Equal(t, "Hello, World!", config.Server.Name)
		assert.Equal(t, 45*time.Second, config.Match.Duration)
		assert.Equal(t, 20, config.Server.TickRate)
	}

	// Invalid config
	{
		bad := filepath.Join(dir, "bad.yaml")
		err = os.WriteFile(bad, []byte(`
pickup:
  decreaseChance: 1.5
`), 0644)
		require.NoError(t, err)
		_, err = Process([]string{bad})
		assert.ErrorIs(t, err, ErrChance)
	}

	// Missing file
	_, err = Process([]string{filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestCooldownLookup(t *testing.T) {
	c := Default()
	assert.Equal(t, c.Abilities.LaserCooldown, c.Abilities.Cooldown(netconfig.AbilityLaser))
	assert.Equal(t, c.Abilities.DoubleJumpCooldown, c.Abilities.Cooldown(netconfig.AbilityJump))
	assert.Equal(t, time.Duration(0), c.Abilities.Cooldown(netconfig.AbilityCount))
}
