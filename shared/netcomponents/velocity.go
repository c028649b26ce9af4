package netcomponents

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

type NetVelocityData struct {
	SpeedX, SpeedY float64
}

func (v NetVelocityData) Vec() mgl64.Vec2 { return mgl64.Vec2{v.SpeedX, v.SpeedY} }

func VelocityOf(v mgl64.Vec2) NetVelocityData { return NetVelocityData{SpeedX: v.X(), SpeedY: v.Y()} }

var NetVelocity = donburi.NewComponentType[NetVelocityData]()

// LerpNetVelocity interpolates between two velocities
func LerpNetVelocity(from, to NetVelocityData, t float64) *NetVelocityData {
	return &NetVelocityData{
		SpeedX: from.SpeedX + (to.SpeedX-from.SpeedX)*t,
		SpeedY: from.SpeedY + (to.SpeedY-from.SpeedY)*t,
	}
}
