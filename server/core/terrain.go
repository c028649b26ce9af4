package core

import (
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/replica"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yohamta/donburi"
)

// Terrain owns the replicated block entities. Breaking goes through the
// physics world first so collision and replicated state never disagree.
type Terrain struct {
	world  World
	ecs    donburi.World
	events *Broadcaster
	blocks map[netconfig.BlockID]donburi.Entity
	log    zerolog.Logger
}

func NewTerrain(course *leveldata.Course, world World, ecsWorld donburi.World, events *Broadcaster, sync replica.SyncFunc) *Terrain {
	t := &Terrain{
		world:  world,
		ecs:    ecsWorld,
		events: events,
		blocks: make(map[netconfig.BlockID]donburi.Entity),
		log:    log.With().Str("component", "terrain").Logger(),
	}
	if course == nil {
		return t
	}
	for _, b := range course.Blocks {
		entity := ecsWorld.Create(netcomponents.NetBlock)
		netcomponents.NetBlock.SetValue(ecsWorld.Entry(entity), netcomponents.NetBlockData{
			ID: b.ID, X: b.X, Y: b.Y, W: b.W, H: b.H, Finish: b.Finish,
		})
		if sync != nil {
			if err := sync(ecsWorld, &entity); err != nil {
				t.log.Error().Err(err).Uint32("block", uint32(b.ID)).Msg("failed to set up network sync")
			}
		}
		t.blocks[b.ID] = entity
	}
	return t
}

// Break validates and applies a break request. Finish blocks, broken blocks
// and unknown ids are refused.
func (t *Terrain) Break(id netconfig.BlockID, by netconfig.PlayerID) bool {
	entity, ok := t.blocks[id]
	if !ok || !t.world.BreakBlock(id) {
		return false
	}
	netcomponents.NetBlock.Get(t.ecs.Entry(entity)).Broken = true
	Publish(t.events, messages.BlockBrokenEvent{Block: id})
	t.log.Debug().Uint32("block", uint32(id)).Uint32("player", uint32(by)).Msg("block broken")
	return true
}

// Broken reports whether id is currently broken.
func (t *Terrain) Broken(id netconfig.BlockID) bool {
	entity, ok := t.blocks[id]
	if !ok {
		return false
	}
	return netcomponents.NetBlock.Get(t.ecs.Entry(entity)).Broken
}

// Restore returns every block to intact. It is idempotent.
func (t *Terrain) Restore() {
	t.world.RestoreBlocks()
	for _, entity := range t.blocks {
		netcomponents.NetBlock.Get(t.ecs.Entry(entity)).Broken = false
	}
}
