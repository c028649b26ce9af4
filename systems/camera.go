package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const followSmoothing = 0.15

// Camera is the centre of the view in course coordinates.
type Camera struct {
	Position mgl64.Vec2
	placed   bool
}

// Follow eases the camera toward target, keeping the course filling the
// screen when it is larger than the screen.
func (c *Camera) Follow(target mgl64.Vec2, screenW, screenH, courseW, courseH float64) {
	target = mgl64.Vec2{
		clampAxis(target.X(), screenW, courseW),
		clampAxis(target.Y(), screenH, courseH),
	}
	if !c.placed {
		c.Position, c.placed = target, true
		return
	}
	c.Position = c.Position.Add(target.Sub(c.Position).Mul(followSmoothing))
}

// Offset converts course coordinates to screen coordinates.
func (c *Camera) Offset(screenW, screenH float64) mgl64.Vec2 {
	return mgl64.Vec2{screenW/2 - c.Position.X(), screenH/2 - c.Position.Y()}
}

func clampAxis(v, screen, course float64) float64 {
	if course <= screen {
		return course / 2
	}
	return math.Max(screen/2, math.Min(course-screen/2, v))
}
