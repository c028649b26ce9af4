package network

import (
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/replica"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/leap-fish/necs/esync"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yohamta/donburi"
)

// SnapshotEntity is one decoded entry of a world snapshot.
type SnapshotEntity struct {
	ID         esync.NetworkId
	Components []any
}

// DecodeSnapshot deserializes every component of a snapshot. Components that
// fail to decode are skipped.
func DecodeSnapshot(snapshot esync.WorldSnapshot) []SnapshotEntity {
	out := make([]SnapshotEntity, 0, len(snapshot))
	for _, ent := range snapshot {
		var compData []any
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			compData = append(compData, instance)
		}
		out = append(out, SnapshotEntity{ID: ent.Id, Components: compData})
	}
	return out
}

// PickupView is a mirrored pickup and where it currently hovers.
type PickupView struct {
	netcomponents.NetPickupData
	Position netcomponents.NetPositionData
}

// Mirror is the peer-side copy of the authority's world. It is written only by
// applying snapshots.
type Mirror struct {
	world   donburi.World
	store   *replica.Store
	clock   *ticktimer.SimClock
	present map[esync.NetworkId]bool

	digestOK bool
	log      zerolog.Logger
}

func NewMirror(capacity int) *Mirror {
	world := donburi.NewWorld()
	return &Mirror{
		world:    world,
		store:    replica.New(world, replica.Mirror, capacity),
		clock:    ticktimer.NewSimClock(1),
		present:  make(map[esync.NetworkId]bool),
		digestOK: true,
		log:      log.With().Str("component", "mirror").Logger(),
	}
}

func (m *Mirror) Store() *replica.Store { return m.store }
func (m *Mirror) World() donburi.World  { return m.world }

// Clock follows the tick of the last applied snapshot.
func (m *Mirror) Clock() ticktimer.Clock { return m.clock }

// Tick is the authority tick of the last applied snapshot.
func (m *Mirror) Tick() ticktimer.Tick { return m.clock.Tick() }

// DigestOK reports whether the last snapshot matched its published digest.
func (m *Mirror) DigestOK() bool { return m.digestOK }

// ApplySnapshot decodes and applies a snapshot received from the authority.
func (m *Mirror) ApplySnapshot(snapshot esync.WorldSnapshot) {
	m.Apply(DecodeSnapshot(snapshot))
}

// Apply replaces the mirrored world with entities. Entities missing from the
// list are removed; the player table and clock are rebuilt afterwards.
func (m *Mirror) Apply(entities []SnapshotEntity) {
	clear(m.present)

	for _, ent := range entities {
		m.present[ent.ID] = true

		entity := esync.FindByNetworkId(m.world, ent.ID)
		if !m.world.Valid(entity) {
			entity = m.world.Create(componentTypesFromInstances(ent.Components)...)

			entry := m.world.Entry(entity)
			entry.AddComponent(esync.NetworkIdComponent)
			esync.NetworkIdComponent.SetValue(entry, ent.ID)
		}

		entry := m.world.Entry(entity)
		for _, data := range ent.Components {
			applyComponentToEntry(entry, data)
		}
	}

	var stale []*donburi.Entry
	esync.NetworkEntityQuery.Each(m.world, func(entry *donburi.Entry) {
		id := esync.GetNetworkId(entry)
		if id == nil {
			return
		}
		if !m.present[*id] {
			stale = append(stale, entry)
		}
	})
	for _, entry := range stale {
		entry.Remove()
	}

	m.store.Reindex()
	if match := m.store.Match(); match.TickRate > 0 {
		m.clock.Sync(match.Tick, match.TickRate)
	}
	m.verify()
}

func (m *Mirror) verify() {
	ok, err := m.store.VerifyDigest()
	if err != nil {
		m.log.Error().Err(err).Msg("failed to compute player table digest")
		return
	}
	if !ok && m.digestOK {
		m.log.Warn().Int64("tick", int64(m.clock.Tick())).Msg("player table digest mismatch")
	}
	m.digestOK = ok
}

// Blocks returns every mirrored terrain block.
func (m *Mirror) Blocks() []netcomponents.NetBlockData {
	var out []netcomponents.NetBlockData
	netcomponents.NetBlock.Each(m.world, func(e *donburi.Entry) {
		out = append(out, *netcomponents.NetBlock.Get(e))
	})
	return out
}

// Pickups returns every mirrored pickup.
func (m *Mirror) Pickups() []PickupView {
	var out []PickupView
	netcomponents.NetPickup.Each(m.world, func(e *donburi.Entry) {
		v := PickupView{NetPickupData: *netcomponents.NetPickup.Get(e)}
		if e.HasComponent(netcomponents.NetPosition) {
			v.Position = *netcomponents.NetPosition.Get(e)
		}
		out = append(out, v)
	})
	return out
}

func componentTypesFromInstances(components []any) []donburi.IComponentType {
	var ctypes []donburi.IComponentType
	for _, data := range components {
		switch data.(type) {
		case netcomponents.NetPlayerData:
			ctypes = append(ctypes, netcomponents.NetPlayer)
		case netcomponents.NetMatchData:
			ctypes = append(ctypes, netcomponents.NetMatch)
		case netcomponents.NetPositionData:
			ctypes = append(ctypes, netcomponents.NetPosition)
		case netcomponents.NetVelocityData:
			ctypes = append(ctypes, netcomponents.NetVelocity)
		case netcomponents.NetBlockData:
			ctypes = append(ctypes, netcomponents.NetBlock)
		case netcomponents.NetPickupData:
			ctypes = append(ctypes, netcomponents.NetPickup)
		}
	}
	return ctypes
}

func applyComponentToEntry(entry *donburi.Entry, data any) {
	switch v := data.(type) {
	case netcomponents.NetPlayerData:
		setComponent(entry, netcomponents.NetPlayer, v)
	case netcomponents.NetMatchData:
		setComponent(entry, netcomponents.NetMatch, v)
	case netcomponents.NetPositionData:
		setComponent(entry, netcomponents.NetPosition, v)
	case netcomponents.NetVelocityData:
		setComponent(entry, netcomponents.NetVelocity, v)
	case netcomponents.NetBlockData:
		setComponent(entry, netcomponents.NetBlock, v)
	case netcomponents.NetPickupData:
		setComponent(entry, netcomponents.NetPickup, v)
	}
}

func setComponent[T any](entry *donburi.Entry, ctype *donburi.ComponentType[T], v T) {
	if !entry.HasComponent(ctype) {
		entry.AddComponent(ctype)
	}
	ctype.SetValue(entry, v)
}
