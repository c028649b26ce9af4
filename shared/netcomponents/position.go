package netcomponents

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// NetPositionData is the centre of an entity in course coordinates.
type NetPositionData struct {
	X, Y float64
}

func (p NetPositionData) Vec() mgl64.Vec2 { return mgl64.Vec2{p.X, p.Y} }

func PositionOf(v mgl64.Vec2) NetPositionData { return NetPositionData{X: v.X(), Y: v.Y()} }

var NetPosition = donburi.NewComponentType[NetPositionData]()

// LerpNetPosition interpolates between two positions
func LerpNetPosition(from, to NetPositionData, t float64) *NetPositionData {
	return &NetPositionData{
		X: from.X + (to.X-from.X)*t,
		Y: from.Y + (to.Y-from.Y)*t,
	}
}
