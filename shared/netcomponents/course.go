package netcomponents

import (
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetBlockData is a terrain block's replicated state.
type NetBlockData struct {
	ID         netconfig.BlockID
	X, Y, W, H float64
	Finish     bool
	Broken     bool
}

var NetBlock = donburi.NewComponentType[NetBlockData]()

// NetPickupData describes a time pickup. Its position travels in NetPosition.
type NetPickupData struct {
	ID             netconfig.PickupID
	DeltaSeconds   float64
	DecreaseChance float64
}

var NetPickup = donburi.NewComponentType[NetPickupData]()
