package netinput

import "github.com/go-gl/mathgl/mgl64"

// Frame is the input committed for one tick. Move is the movement axis with
// length at most 1; Look is the pitch/yaw delta in degrees, already scaled by
// the owner's sensitivity.
type Frame struct {
	Sequence uint32
	Move     mgl64.Vec2
	Buttons  Buttons
	Look     mgl64.Vec2
}

// ClampMove normalizes v when it is longer than 1 and zeroes tiny vectors.
func ClampMove(v mgl64.Vec2) mgl64.Vec2 {
	l := v.Len()
	if l < 1e-5 {
		return mgl64.Vec2{}
	}
	if l > 1 {
		return v.Mul(1 / l)
	}
	return v
}
