// Package replica keeps the replicated player table and match singleton in a
// donburi world. The authority store is the single writer; mirror stores are
// rebuilt from snapshots and refuse local mutation.
package replica

import (
	"errors"
	"sort"

	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yohamta/donburi"
)

var (
	ErrCapacity      = errors.New("replica: player capacity reached")
	ErrDuplicate     = errors.New("replica: player already present")
	ErrUnknownPlayer = errors.New("replica: unknown player")
)

// Role selects whether a store may mutate state.
type Role int

const (
	Authority Role = iota
	Mirror
)

// SyncFunc marks a freshly created entity for replication.
type SyncFunc func(world donburi.World, entity *donburi.Entity) error

type Option func(*Store)

// WithSync registers fn for every entity the store creates.
func WithSync(fn SyncFunc) Option {
	return func(s *Store) { s.sync = fn }
}

// Store is the keyed player collection plus the match singleton.
type Store struct {
	world    donburi.World
	role     Role
	capacity int
	sync     SyncFunc
	log      zerolog.Logger

	order    []netconfig.PlayerID
	entities map[netconfig.PlayerID]donburi.Entity
	match    donburi.Entity
	nextJoin uint64
}

func New(world donburi.World, role Role, capacity int, opts ...Option) *Store {
	s := &Store{
		world:    world,
		role:     role,
		capacity: capacity,
		entities: make(map[netconfig.PlayerID]donburi.Entity),
		log:      log.With().Str("component", "replica").Logger(),
	}
	for _, o := range opts {
		o(s)
	}

	if role == Authority {
		s.match = world.Create(netcomponents.NetMatch)
		s.track(&s.match)
	}
	return s
}

func (s *Store) World() donburi.World { return s.world }
func (s *Store) IsAuthority() bool    { return s.role == Authority }
func (s *Store) Capacity() int        { return s.capacity }
func (s *Store) Len() int             { return len(s.order) }
func (s *Store) Full() bool           { return len(s.order) >= s.capacity }

// allowed is the precondition for every mutation. Mirrors ignore writes.
func (s *Store) allowed(op string) bool {
	if s.role == Authority {
		return true
	}
	s.log.Debug().Str("op", op).Msg("ignoring mutation on mirror")
	return false
}

func (s *Store) track(entity *donburi.Entity) {
	if s.sync == nil {
		return
	}
	if err := s.sync(s.world, entity); err != nil {
		s.log.Error().Err(err).Msg("failed to set up network sync")
	}
}

// Insert adds a player. The store assigns JoinOrder. On a mirror it is a no-op.
func (s *Store) Insert(p netcomponents.NetPlayerData, pos netcomponents.NetPositionData) error {
	if !s.allowed("insert") {
		return nil
	}
	if _, ok := s.entities[p.ID]; ok {
		return ErrDuplicate
	}
	if s.Full() {
		return ErrCapacity
	}

	s.nextJoin++
	p.JoinOrder = s.nextJoin

	entity := s.world.Create(netcomponents.NetPlayer, netcomponents.NetPosition, netcomponents.NetVelocity)
	entry := s.world.Entry(entity)
	netcomponents.NetPlayer.SetValue(entry, p)
	netcomponents.NetPosition.SetValue(entry, pos)
	netcomponents.NetVelocity.SetValue(entry, netcomponents.NetVelocityData{})
	s.track(&entity)

	s.entities[p.ID] = entity
	s.order = append(s.order, p.ID)
	return nil
}

// Remove deletes a player and reports whether it was present.
func (s *Store) Remove(id netconfig.PlayerID) bool {
	if !s.allowed("remove") {
		return false
	}
	entity, ok := s.entities[id]
	if !ok {
		return false
	}
	if s.world.Valid(entity) {
		s.world.Remove(entity)
	}
	delete(s.entities, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store) entry(id netconfig.PlayerID) (*donburi.Entry, bool) {
	entity, ok := s.entities[id]
	if !ok || !s.world.Valid(entity) {
		return nil, false
	}
	return s.world.Entry(entity), true
}

// Has reports whether id is in the table.
func (s *Store) Has(id netconfig.PlayerID) bool {
	_, ok := s.entities[id]
	return ok
}

// Get returns a copy of a player's state.
func (s *Store) Get(id netconfig.PlayerID) (netcomponents.NetPlayerData, bool) {
	e, ok := s.entry(id)
	if !ok {
		return netcomponents.NetPlayerData{}, false
	}
	return *netcomponents.NetPlayer.Get(e), true
}

// Mutate runs fn against the stored state of id. It returns false when id is
// unknown or the store is a mirror.
func (s *Store) Mutate(id netconfig.PlayerID, fn func(p *netcomponents.NetPlayerData)) bool {
	if !s.allowed("mutate") {
		return false
	}
	e, ok := s.entry(id)
	if !ok {
		return false
	}
	fn(netcomponents.NetPlayer.Get(e))
	return true
}

// Position returns the replicated body centre of id.
func (s *Store) Position(id netconfig.PlayerID) (netcomponents.NetPositionData, bool) {
	e, ok := s.entry(id)
	if !ok {
		return netcomponents.NetPositionData{}, false
	}
	return *netcomponents.NetPosition.Get(e), true
}

// SetKinematics writes the body position and velocity published to peers.
func (s *Store) SetKinematics(id netconfig.PlayerID, pos netcomponents.NetPositionData, vel netcomponents.NetVelocityData) bool {
	if !s.allowed("kinematics") {
		return false
	}
	e, ok := s.entry(id)
	if !ok {
		return false
	}
	netcomponents.NetPosition.SetValue(e, pos)
	netcomponents.NetVelocity.SetValue(e, vel)
	return true
}

// IDs returns player ids in insertion order.
func (s *Store) IDs() []netconfig.PlayerID {
	out := make([]netconfig.PlayerID, len(s.order))
	copy(out, s.order)
	return out
}

// Each visits copies of every player in insertion order.
func (s *Store) Each(fn func(p netcomponents.NetPlayerData)) {
	for _, id := range s.order {
		if p, ok := s.Get(id); ok {
			fn(p)
		}
	}
}

// Players returns copies of every player in insertion order.
func (s *Store) Players() []netcomponents.NetPlayerData {
	out := make([]netcomponents.NetPlayerData, 0, len(s.order))
	s.Each(func(p netcomponents.NetPlayerData) { out = append(out, p) })
	return out
}

// Match returns a copy of the match singleton.
func (s *Store) Match() netcomponents.NetMatchData {
	if !s.world.Valid(s.match) {
		return netcomponents.NetMatchData{}
	}
	return *netcomponents.NetMatch.Get(s.world.Entry(s.match))
}

// MutateMatch runs fn against the match singleton.
func (s *Store) MutateMatch(fn func(m *netcomponents.NetMatchData)) bool {
	if !s.allowed("match") {
		return false
	}
	if !s.world.Valid(s.match) {
		return false
	}
	fn(netcomponents.NetMatch.Get(s.world.Entry(s.match)))
	return true
}

// Reindex rebuilds a mirror's lookup tables from the entities present in its
// world, ordering players by JoinOrder.
func (s *Store) Reindex() {
	if s.role == Authority {
		return
	}
	s.entities = make(map[netconfig.PlayerID]donburi.Entity, len(s.entities))
	s.order = s.order[:0]
	s.match = donburi.Null

	type row struct {
		id    netconfig.PlayerID
		order uint64
	}
	var rows []row
	netcomponents.NetPlayer.Each(s.world, func(e *donburi.Entry) {
		p := netcomponents.NetPlayer.Get(e)
		s.entities[p.ID] = e.Entity()
		rows = append(rows, row{id: p.ID, order: p.JoinOrder})
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].order < rows[j].order })
	for _, r := range rows {
		s.order = append(s.order, r.id)
	}

	if e, ok := netcomponents.NetMatch.First(s.world); ok {
		s.match = e.Entity()
	}
}
