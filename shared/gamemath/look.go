package gamemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Up points toward the top of the screen; the course uses y-down coordinates.
var Up = mgl64.Vec2{0, -1}

// LookRotation is a pitch/yaw pair in degrees. Pitch is the elevation above
// the horizon and is clamped; yaw only selects which way the player faces.
type LookRotation struct {
	Pitch float64
	Yaw   float64
}

// Add applies a look delta (x = pitch, y = yaw) and clamps pitch to
// [-maxPitch, maxPitch]. Yaw wraps into [0, 360).
func (r LookRotation) Add(delta mgl64.Vec2, maxPitch float64) LookRotation {
	return LookRotation{
		Pitch: mgl64.Clamp(r.Pitch+delta.X(), -maxPitch, maxPitch),
		Yaw:   WrapDegrees(r.Yaw + delta.Y()),
	}
}

// Facing is +1 when facing right and -1 when facing left.
func (r LookRotation) Facing() float64 {
	if math.Cos(mgl64.DegToRad(r.Yaw)) >= 0 {
		return 1
	}
	return -1
}

// Forward is the unit aim direction in course coordinates.
func (r LookRotation) Forward() mgl64.Vec2 {
	p := mgl64.DegToRad(r.Pitch)
	return mgl64.Vec2{r.Facing() * math.Cos(p), -math.Sin(p)}
}

// LookAt returns a level rotation facing from toward target.
func LookAt(from, target mgl64.Vec2) LookRotation {
	if target.X() < from.X() {
		return LookRotation{Yaw: 180}
	}
	return LookRotation{}
}

// WrapDegrees maps any angle into [0, 360).
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
