package core

import (
	"math/rand/v2"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/replica"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
)

// PickupHandler applies a collected pickup. It reports whether the effect
// was honoured.
type PickupHandler func(pickup netcomponents.NetPickupData, by netconfig.PlayerID) bool

type activePickup struct {
	data   netcomponents.NetPickupData
	entity donburi.Entity
	base   mgl64.Vec2
	bob    *gween.Sequence
}

// Pickups spawns, animates and collects time pickups. A pickup is removed on
// first contact and produces exactly one handler call.
type Pickups struct {
	cfg    config.PickupConfig
	pivot  leveldata.Pivot
	store  *replica.Store
	world  World
	sync   replica.SyncFunc
	events *Broadcaster
	clock  ticktimer.Clock
	rng    *rand.Rand

	onTaken  PickupHandler
	nextID   netconfig.PickupID
	active   []*activePickup
	interval ticktimer.Timer
	log      zerolog.Logger
}

func NewPickups(cfg config.PickupConfig, course *leveldata.Course, store *replica.Store, world World, events *Broadcaster, clock ticktimer.Clock, rng *rand.Rand, sync replica.SyncFunc) *Pickups {
	p := &Pickups{
		cfg:    cfg,
		store:  store,
		world:  world,
		sync:   sync,
		events: events,
		clock:  clock,
		rng:    rng,
		log:    log.With().Str("component", "pickups").Logger(),
	}
	if course != nil {
		p.pivot = course.PickupPivot
	}
	if p.pivot.Radius == 0 {
		p.pivot.Radius = cfg.SpawnRadius
	}
	if p.pivot.MaxHeight == 0 {
		p.pivot.MinHeight, p.pivot.MaxHeight = cfg.MinHeight, cfg.MaxHeight
	}
	return p
}

// OnTaken installs the handler for collected pickups.
func (p *Pickups) OnTaken(h PickupHandler) { p.onTaken = h }

// Len reports how many pickups are in the world.
func (p *Pickups) Len() int { return len(p.active) }

// Begin spawns the first pickup of a match and starts the periodic spawner.
func (p *Pickups) Begin(start mgl64.Vec2) {
	p.Spawn(start)
	p.interval = ticktimer.FromDuration(p.clock, p.cfg.Interval)
}

// Spawn places one pickup at pos.
func (p *Pickups) Spawn(pos mgl64.Vec2) netconfig.PickupID {
	p.nextID++
	data := netcomponents.NetPickupData{
		ID:             p.nextID,
		DeltaSeconds:   p.cfg.Delta.Seconds(),
		DecreaseChance: p.cfg.DecreaseChance,
	}

	w := p.store.World()
	entity := w.Create(netcomponents.NetPickup, netcomponents.NetPosition)
	entry := w.Entry(entity)
	netcomponents.NetPickup.SetValue(entry, data)
	netcomponents.NetPosition.SetValue(entry, netcomponents.PositionOf(pos))
	if p.sync != nil {
		if err := p.sync(w, &entity); err != nil {
			p.log.Error().Err(err).Msg("failed to set up network sync")
		}
	}

	half := float32(p.cfg.BobPeriod.Seconds() / 2)
	bob := gween.NewSequence()
	bob.Add(
		gween.New(0, float32(p.cfg.BobHeight), half, ease.Linear),
		gween.New(float32(p.cfg.BobHeight), 0, half, ease.Linear),
	)

	p.active = append(p.active, &activePickup{data: data, entity: entity, base: pos, bob: bob})
	Publish(p.events, messages.PickupSpawnedEvent{Pickup: data.ID, X: pos.X(), Y: pos.Y()})
	return data.ID
}

// Clear removes every pickup and stops the spawner.
func (p *Pickups) Clear() {
	for _, a := range p.active {
		p.remove(a)
	}
	p.active = nil
	p.interval = ticktimer.None()
}

func (p *Pickups) remove(a *activePickup) {
	w := p.store.World()
	if w.Valid(a.entity) {
		w.Remove(a.entity)
	}
}

// Tick runs the spawner, the hover animation and contact checks. Like the
// lifecycle, it is frozen while the session has no players.
func (p *Pickups) Tick() {
	m := p.store.Match()
	if m.State != netconfig.MatchGoing || p.store.Len() == 0 {
		return
	}

	if p.interval.Expired(p.clock) {
		pos := gamemath.PickupPoint(
			mgl64.Vec2{p.pivot.X, p.pivot.Y}, p.pivot.Radius, p.pivot.MinHeight, p.pivot.MaxHeight,
			p.rng.Float64()*2-1, p.rng.Float64(),
		)
		p.Spawn(pos)
		p.interval = ticktimer.FromDuration(p.clock, p.cfg.Interval)
	}

	dt := float32(ticktimer.DeltaTime(p.clock).Seconds())
	w := p.store.World()
	kept := p.active[:0]
	for _, a := range p.active {
		lift, _, done := a.bob.Update(dt)
		if done {
			a.bob.Reset()
		}
		pos := a.base.Add(gamemath.Up.Mul(float64(lift)))
		if w.Valid(a.entity) {
			netcomponents.NetPosition.SetValue(w.Entry(a.entity), netcomponents.PositionOf(pos))
		}

		if by, ok := p.contact(m, pos); ok {
			p.remove(a)
			p.log.Debug().Uint32("pickup", uint32(a.data.ID)).Uint32("player", uint32(by)).Msg("pickup taken")
			if p.onTaken != nil {
				p.onTaken(a.data, by)
			}
			continue
		}
		kept = append(kept, a)
	}
	p.active = kept
}

// contact finds the first participant in store order touching pos.
func (p *Pickups) contact(m netcomponents.NetMatchData, pos mgl64.Vec2) (netconfig.PlayerID, bool) {
	for _, id := range p.store.IDs() {
		if !m.IsParticipant(id) {
			continue
		}
		if p.world.Overlaps(id, pos, p.cfg.ContactRadius) {
			return id, true
		}
	}
	return netconfig.NoPlayer, false
}
