package core

import (
	"math"
	"sort"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	opt "github.com/repeale/fp-go/option"
)

// ResolvWorld is the World backed by a resolv collision space. Movement is
// sub-stepped so constants tuned for 60 Hz hold at the server's lower tick
// rate.
type ResolvWorld struct {
	level  *ServerLevel
	player config.PlayerConfig
	phys   config.PhysicsConfig

	// 60 Hz sub-steps owed per tick. The fraction carries over so the
	// average step rate stays at 60 Hz for any tick rate.
	stepRate float64
	owed     float64

	bodies map[netconfig.PlayerID]*PlayerBody
	order  []netconfig.PlayerID // sorted, for deterministic stepping
}

const subStepRate = 60.0

func NewResolvWorld(course *leveldata.Course, player config.PlayerConfig, phys config.PhysicsConfig, tickRate int) *ResolvWorld {
	return &ResolvWorld{
		level:    NewServerLevel(course),
		player:   player,
		phys:     phys,
		stepRate: subStepRate / float64(max(tickRate, 1)),
		bodies:   make(map[netconfig.PlayerID]*PlayerBody),
	}
}

func (w *ResolvWorld) AddBody(id netconfig.PlayerID, center mgl64.Vec2) {
	if b, ok := w.bodies[id]; ok {
		b.moveTo(center)
		return
	}
	w.bodies[id] = newPlayerBody(w.level, id, center, w.player.Width, w.player.Height)
	w.order = append(w.order, id)
	sort.Slice(w.order, func(i, j int) bool { return w.order[i] < w.order[j] })
}

func (w *ResolvWorld) RemoveBody(id netconfig.PlayerID) {
	b, ok := w.bodies[id]
	if !ok {
		return
	}
	removePlayerBody(w.level, b)
	delete(w.bodies, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Step runs the sub-stepped movement for every body.
func (w *ResolvWorld) Step() {
	for step := w.takeSteps(); step > 0; step-- {
		for _, id := range w.order {
			w.stepBody(w.bodies[id])
		}
	}
}

// takeSteps returns how many sub-steps this tick runs: 3 every tick at
// 20 Hz, a 2,2,3,2,3 pattern at 25 Hz.
func (w *ResolvWorld) takeSteps() int {
	w.owed += w.stepRate
	n := int(w.owed + 1e-9)
	w.owed -= float64(n)
	return n
}

// stepBody performs a single 60 Hz sub-step for one body.
func (w *ResolvWorld) stepBody(b *PlayerBody) {
	vx, vy := b.Velocity.X(), b.Velocity.Y()

	// Horizontal input
	vx += b.Direction * w.phys.Acceleration

	if b.OnGround {
		vx = gamemath.ApplyFriction(vx, w.phys.Friction)
	}
	vx = gamemath.ClampSpeed(vx, w.phys.MaxSpeed)

	if b.Gliding {
		vy = gamemath.ApplyGravity(vy, w.phys.GlideGravity, w.phys.GlideMaxFall)
	} else {
		vy = gamemath.ApplyGravity(vy, w.phys.Gravity, w.phys.MaxFallSpeed)
	}

	// Resolve horizontal collision
	dx := vx
	if dx != 0 {
		if check := b.Object.Check(dx, 0, tagSolid); check != nil {
			if solids := check.ObjectsByTags(tagSolid); len(solids) > 0 {
				contact := check.ContactWithObject(solids[0])
				dx = contact.X()
				vx = 0
			}
		}
		b.Object.X += dx
	}

	// Resolve vertical collision
	dy := math.Max(math.Min(vy, w.phys.MaxVertSpeed), -w.phys.MaxVertSpeed)
	checkDist := dy
	if dy >= 0 {
		checkDist++
	}

	landed := false
	if check := b.Object.Check(0, checkDist, tagSolid); check != nil {
		if solids := check.ObjectsByTags(tagSolid); len(solids) > 0 {
			contact := check.ContactWithObject(solids[0])
			b.Object.Y += contact.Y()
			landed = dy >= 0
			vy = 0
			dy = 0
		}
	}
	b.Object.Y += dy
	b.OnGround = landed
	b.Velocity = mgl64.Vec2{vx, vy}
	b.Object.Update()
}

func (w *ResolvWorld) IsGrounded(id netconfig.PlayerID) bool {
	b, ok := w.bodies[id]
	return ok && b.OnGround
}

func (w *ResolvWorld) ApplyImpulse(id netconfig.PlayerID, impulse mgl64.Vec2) {
	b, ok := w.bodies[id]
	if !ok {
		return
	}
	b.Velocity = b.Velocity.Add(impulse)
	if impulse.Y() < 0 {
		b.OnGround = false
	}
}

func (w *ResolvWorld) SetVelocity(id netconfig.PlayerID, v mgl64.Vec2) {
	if b, ok := w.bodies[id]; ok {
		b.Velocity = v
	}
}

func (w *ResolvWorld) Velocity(id netconfig.PlayerID) mgl64.Vec2 {
	if b, ok := w.bodies[id]; ok {
		return b.Velocity
	}
	return mgl64.Vec2{}
}

func (w *ResolvWorld) Position(id netconfig.PlayerID) mgl64.Vec2 {
	if b, ok := w.bodies[id]; ok {
		return b.Center()
	}
	return mgl64.Vec2{}
}

func (w *ResolvWorld) Teleport(id netconfig.PlayerID, center mgl64.Vec2) {
	if b, ok := w.bodies[id]; ok {
		b.moveTo(center)
		b.OnGround = false
	}
}

func (w *ResolvWorld) SetInputDirection(id netconfig.PlayerID, dir float64) {
	if b, ok := w.bodies[id]; ok {
		b.Direction = mgl64.Clamp(dir, -1, 1)
	}
}

func (w *ResolvWorld) SetGliding(id netconfig.PlayerID, gliding bool) {
	if b, ok := w.bodies[id]; ok {
		b.Gliding = gliding
	}
}

func (w *ResolvWorld) BreakBlock(id netconfig.BlockID) bool {
	return w.level.breakBlock(id)
}

func (w *ResolvWorld) RestoreBlocks() {
	w.level.restore()
}

func (w *ResolvWorld) InZone(id netconfig.PlayerID) bool {
	b, ok := w.bodies[id]
	if !ok || !w.level.Course.HasZone {
		return false
	}
	return overlapsRect(bodyRect(b), w.level.Course.FinishZone)
}

func (w *ResolvWorld) Overlaps(id netconfig.PlayerID, center mgl64.Vec2, radius float64) bool {
	b, ok := w.bodies[id]
	if !ok {
		return false
	}
	r := bodyRect(b)
	nearest := mgl64.Vec2{
		mgl64.Clamp(center.X(), r.X, r.X+r.W),
		mgl64.Clamp(center.Y(), r.Y, r.Y+r.H),
	}
	return nearest.Sub(center).Len() <= radius
}

// Raycast tests the ray against walls, intact blocks and other bodies and
// returns the nearest hit. Equal distances resolve in that order.
func (w *ResolvWorld) Raycast(origin, dir mgl64.Vec2, maxDist float64, ignore netconfig.PlayerID) opt.Option[Hit] {
	if dir.Len() == 0 || maxDist <= 0 {
		return opt.None[Hit]()
	}
	dir = dir.Normalize()

	best := Hit{Distance: math.Inf(1)}
	consider := func(r leveldata.Rect, h Hit) {
		if d, ok := rayRect(origin, dir, r); ok && d <= maxDist && d < best.Distance {
			h.Distance = d
			h.Point = origin.Add(dir.Mul(d))
			best = h
		}
	}

	for _, r := range w.level.Walls {
		consider(r, Hit{Kind: HitSolid})
	}
	for _, b := range w.level.Blocks {
		if !b.Broken {
			consider(b.Rect, Hit{Kind: HitBlock, Block: b.ID})
		}
	}
	for _, id := range w.order {
		if id == ignore {
			continue
		}
		consider(bodyRect(w.bodies[id]), Hit{Kind: HitPlayer, Player: id})
	}

	if best.Kind == 0 {
		return opt.None[Hit]()
	}
	return opt.Some[Hit](best)
}

func bodyRect(b *PlayerBody) leveldata.Rect {
	return leveldata.Rect{X: b.Object.X, Y: b.Object.Y, W: b.Object.W, H: b.Object.H}
}

func overlapsRect(a, b leveldata.Rect) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

// rayRect is a slab test. It reports the entry distance along a unit ray, or
// false when the ray misses or starts inside the rectangle.
func rayRect(origin, dir mgl64.Vec2, r leveldata.Rect) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	lo := [2]float64{r.X, r.Y}
	hi := [2]float64{r.X + r.W, r.Y + r.H}

	for axis := 0; axis < 2; axis++ {
		o, d := origin[axis], dir[axis]
		if d == 0 {
			if o < lo[axis] || o > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - o) / d
		t2 := (hi[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}
	if tmax < tmin || tmin < 0 {
		return 0, false
	}
	return tmin, true
}
