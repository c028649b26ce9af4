// Package config holds the tunable values for the server and client. Defaults
// live in default.yaml; Process layers user files over them.
package config

import (
	"time"

	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
)

// Config is the root of the configuration tree.
type Config struct {
	Server    ServerConfig  `yaml:"server"`
	Match     MatchConfig   `yaml:"match"`
	Player    PlayerConfig  `yaml:"player"`
	Abilities AbilityConfig `yaml:"abilities"`
	Physics   PhysicsConfig `yaml:"physics"`
	Pickup    PickupConfig  `yaml:"pickup"`
	Input     InputConfig   `yaml:"input"`
}

// ServerConfig contains the dedicated server settings
type ServerConfig struct {
	Name       string `yaml:"name"`
	Port       uint   `yaml:"port"`
	TickRate   int    `yaml:"tickRate"`
	MaxPlayers int    `yaml:"maxPlayers"`
	Version    string `yaml:"version"` // required client version, empty accepts any
	Course     string `yaml:"course"`  // path to the course TMX
}

// MatchConfig contains lifecycle timings
type MatchConfig struct {
	Duration       time.Duration `yaml:"duration"`
	CountdownSteps int           `yaml:"countdownSteps"`
	CountdownStep  time.Duration `yaml:"countdownStep"`

	// Fallbacks when the course has no pivot radius
	SpawnRadius float64 `yaml:"spawnRadius"`
	LobbyRadius float64 `yaml:"lobbyRadius"`
}

// PlayerConfig contains per-player values
type PlayerConfig struct {
	MaxHealth int `yaml:"maxHealth"`

	// Dimensions
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	EyeOffset float64 `yaml:"eyeOffset"` // distance from body centre up to the eye

	MaxPitch      float64 `yaml:"maxPitch"` // degrees
	UnitsPerMetre float64 `yaml:"unitsPerMetre"`
}

// AbilityConfig contains ability tuning. Impulses are in course units per
// physics sub-step.
type AbilityConfig struct {
	// Jump
	JumpImpulse          float64       `yaml:"jumpImpulse"`
	DoubleJumpMultiplier float64       `yaml:"doubleJumpMultiplier"`
	DoubleJumpCooldown   time.Duration `yaml:"doubleJumpCooldown"`

	// Grapple
	GrappleRange    float64       `yaml:"grappleRange"`
	GrappleImpulse  float64       `yaml:"grappleImpulse"`
	GrappleUpBias   float64       `yaml:"grappleUpBias"`
	GrappleCooldown time.Duration `yaml:"grappleCooldown"`

	// Glide
	GlideDuration     time.Duration `yaml:"glideDuration"`
	GlideCooldown     time.Duration `yaml:"glideCooldown"`
	GlideEntryDamping float64       `yaml:"glideEntryDamping"` // vertical speed multiplier on entry

	// Break
	BreakRange    float64       `yaml:"breakRange"`
	BreakCooldown time.Duration `yaml:"breakCooldown"`

	// Laser
	LaserRange    float64       `yaml:"laserRange"`
	LaserDamage   int           `yaml:"laserDamage"`
	LaserCooldown time.Duration `yaml:"laserCooldown"`
}

// Cooldown returns the configured cooldown for an ability index.
func (a AbilityConfig) Cooldown(ability netconfig.Ability) time.Duration {
	switch ability {
	case netconfig.AbilityJump:
		return a.DoubleJumpCooldown
	case netconfig.AbilityGrapple:
		return a.GrappleCooldown
	case netconfig.AbilityGlide:
		return a.GlideCooldown
	case netconfig.AbilityBreak:
		return a.BreakCooldown
	case netconfig.AbilityLaser:
		return a.LaserCooldown
	}
	return 0
}

// PhysicsConfig contains the movement model. Values are tuned for 60 Hz
// sub-steps regardless of the server tick rate.
type PhysicsConfig struct {
	Gravity      float64 `yaml:"gravity"`
	MaxFallSpeed float64 `yaml:"maxFallSpeed"`
	Acceleration float64 `yaml:"acceleration"`
	MaxSpeed     float64 `yaml:"maxSpeed"`
	Friction     float64 `yaml:"friction"`
	MaxVertSpeed float64 `yaml:"maxVertSpeed"`

	// Applied while gliding
	GlideGravity float64 `yaml:"glideGravity"`
	GlideMaxFall float64 `yaml:"glideMaxFall"`
}

// PickupConfig contains time pickup settings
type PickupConfig struct {
	Delta          time.Duration `yaml:"delta"`
	DecreaseChance float64       `yaml:"decreaseChance"`
	Interval       time.Duration `yaml:"interval"`
	ContactRadius  float64       `yaml:"contactRadius"`

	// Hover animation
	BobHeight float64       `yaml:"bobHeight"`
	BobPeriod time.Duration `yaml:"bobPeriod"`

	// Fallback spawn band when the course has no pickup pivot properties
	SpawnRadius float64 `yaml:"spawnRadius"`
	MinHeight   float64 `yaml:"minHeight"`
	MaxHeight   float64 `yaml:"maxHeight"`
}

// InputConfig contains client input and server input queue settings
type InputConfig struct {
	Sensitivity     float64       `yaml:"sensitivity"` // degrees per pixel of pointer motion
	SmoothingWindow time.Duration `yaml:"smoothingWindow"`
	InvertPitch     bool          `yaml:"invertPitch"`
	QueueDepth      int           `yaml:"queueDepth"` // frames buffered per player on the server
}
