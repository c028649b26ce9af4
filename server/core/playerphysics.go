package core

import (
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

// PlayerBody holds per-player physics state on the server. It is not a
// donburi component; only NetPosition and NetVelocity are replicated.
type PlayerBody struct {
	ID       netconfig.PlayerID
	Object   *resolv.Object
	Velocity mgl64.Vec2
	OnGround bool

	// Latest input applied by the ability engine
	Direction float64
	Gliding   bool
}

func newPlayerBody(level *ServerLevel, id netconfig.PlayerID, center mgl64.Vec2, w, h float64) *PlayerBody {
	obj := resolv.NewObject(center.X()-w/2, center.Y()-h/2, w, h, tagPlayer)
	obj.SetShape(resolv.NewRectangle(0, 0, w, h))
	level.Space.Add(obj)

	return &PlayerBody{ID: id, Object: obj}
}

func removePlayerBody(level *ServerLevel, b *PlayerBody) {
	level.Space.Remove(b.Object)
}

// Center is the middle of the body's bounding box.
func (b *PlayerBody) Center() mgl64.Vec2 {
	return mgl64.Vec2{b.Object.X + b.Object.W/2, b.Object.Y + b.Object.H/2}
}

func (b *PlayerBody) moveTo(center mgl64.Vec2) {
	b.Object.X = center.X() - b.Object.W/2
	b.Object.Y = center.Y() - b.Object.H/2
	b.Object.Update()
}
