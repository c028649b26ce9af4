package gamemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SpawnRing places n points evenly on a circle of the given radius around
// pivot, starting offsetDeg degrees from the positive x axis. Distinct for any
// positive radius.
func SpawnRing(pivot mgl64.Vec2, radius float64, n int, offsetDeg float64) []mgl64.Vec2 {
	if n <= 0 {
		return nil
	}
	step := 360.0 / float64(n)
	points := make([]mgl64.Vec2, n)
	for i := range points {
		angle := mgl64.DegToRad(offsetDeg + step*float64(i))
		points[i] = pivot.Add(mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(radius))
	}
	return points
}

// LobbyPoint picks a point on the lobby floor. u in [-1, 1] is the horizontal
// offset as a share of radius.
func LobbyPoint(pivot mgl64.Vec2, radius, u float64) mgl64.Vec2 {
	return mgl64.Vec2{pivot.X() + radius*mgl64.Clamp(u, -1, 1), pivot.Y()}
}

// PickupPoint picks a hover point around pivot: u in [-1, 1] spreads it
// horizontally within radius and v in [0, 1] lifts it between minHeight and
// maxHeight above the pivot.
func PickupPoint(pivot mgl64.Vec2, radius, minHeight, maxHeight, u, v float64) mgl64.Vec2 {
	lift := minHeight + mgl64.Clamp(v, 0, 1)*(maxHeight-minHeight)
	return mgl64.Vec2{
		pivot.X() + radius*mgl64.Clamp(u, -1, 1),
		pivot.Y() - lift,
	}
}
