package core

import (
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	opt "github.com/repeale/fp-go/option"
)

// HitKind classifies what a raycast struck.
type HitKind int

const (
	HitSolid HitKind = iota + 1
	HitBlock
	HitPlayer
)

// Hit is a raycast result.
type Hit struct {
	Point    mgl64.Vec2
	Distance float64
	Kind     HitKind
	Player   netconfig.PlayerID // set for HitPlayer
	Block    netconfig.BlockID  // set for HitBlock
}

// Physics is the oracle the ability engine drives. Calls are synchronous and
// positions are body centres.
type Physics interface {
	// Raycast returns the nearest hit within maxDist, skipping ignore's body.
	Raycast(origin, dir mgl64.Vec2, maxDist float64, ignore netconfig.PlayerID) opt.Option[Hit]
	IsGrounded(id netconfig.PlayerID) bool
	ApplyImpulse(id netconfig.PlayerID, impulse mgl64.Vec2)
	SetVelocity(id netconfig.PlayerID, v mgl64.Vec2)
	Velocity(id netconfig.PlayerID) mgl64.Vec2
	Position(id netconfig.PlayerID) mgl64.Vec2
	Teleport(id netconfig.PlayerID, center mgl64.Vec2)
	SetInputDirection(id netconfig.PlayerID, dir float64)
	SetGliding(id netconfig.PlayerID, gliding bool)
}

// World is the physics oracle plus the course operations the lifecycle needs.
type World interface {
	Physics
	AddBody(id netconfig.PlayerID, center mgl64.Vec2)
	RemoveBody(id netconfig.PlayerID)
	// Step advances every body by one simulation tick.
	Step()
	// BreakBlock deactivates an intact, non-finish block. It reports false
	// for anything else.
	BreakBlock(id netconfig.BlockID) bool
	RestoreBlocks()
	InZone(id netconfig.PlayerID) bool
	Overlaps(id netconfig.PlayerID, center mgl64.Vec2, radius float64) bool
}
