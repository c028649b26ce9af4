package core

import (
	"math/rand/v2"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/SpeedyZooba/blocky-climb/shared/replica"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

type sessionOptions struct {
	world donburi.World
	sync  replica.SyncFunc
	sinks []EventSink
	rng   *rand.Rand
}

type SessionOption func(*sessionOptions)

// WithEntitySync marks every replicated entity the session creates.
func WithEntitySync(fn replica.SyncFunc) SessionOption {
	return func(o *sessionOptions) { o.sync = fn }
}

// WithWorld runs the session on an existing donburi world.
func WithWorld(w donburi.World) SessionOption {
	return func(o *sessionOptions) { o.world = w }
}

// WithSinks adds event sinks in front of the default log sink.
func WithSinks(sinks ...EventSink) SessionOption {
	return func(o *sessionOptions) { o.sinks = append(o.sinks, sinks...) }
}

// WithRand fixes the random source used for spawn offsets and pickup rolls.
func WithRand(rng *rand.Rand) SessionOption {
	return func(o *sessionOptions) { o.rng = rng }
}

// Session is one authoritative match session. All methods must be called
// from the simulation goroutine.
type Session struct {
	cfg       *config.Config
	clock     *ticktimer.SimClock
	world     World
	store     *replica.Store
	events    *Broadcaster
	terrain   *Terrain
	abilities *AbilityEngine
	lifecycle *Lifecycle
	pickups   *Pickups
	inputs    *InputQueue
	ecs       *ecs.ECS
	log       zerolog.Logger
}

func NewSession(cfg *config.Config, course *leveldata.Course, world World, opts ...SessionOption) *Session {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.world == nil {
		o.world = donburi.NewWorld()
	}

	s := &Session{
		cfg:    cfg,
		clock:  ticktimer.NewSimClock(cfg.Server.TickRate),
		world:  world,
		inputs: NewInputQueue(cfg.Input.QueueDepth),
		ecs:    ecs.NewECS(o.world),
		log:    log.With().Str("component", "session").Logger(),
	}

	var storeOpts []replica.Option
	if o.sync != nil {
		storeOpts = append(storeOpts, replica.WithSync(o.sync))
	}
	s.store = replica.New(s.ecs.World, replica.Authority, cfg.Server.MaxPlayers, storeOpts...)
	s.events = NewBroadcaster(s.clock, append(o.sinks, NewLogSink())...)
	s.terrain = NewTerrain(course, world, s.ecs.World, s.events, o.sync)
	s.abilities = NewAbilityEngine(cfg, s.store, world, s.terrain, s.events, s.clock)
	s.pickups = NewPickups(cfg.Pickup, course, s.store, world, s.events, s.clock, o.rng, o.sync)
	s.lifecycle = NewLifecycle(cfg, course, s.store, world, s.terrain, s.pickups, s.events, s.clock, o.rng)

	s.ecs.AddSystem(s.advanceClock)
	s.ecs.AddSystem(s.runAbilities)
	s.ecs.AddSystem(s.checkDeaths)
	s.ecs.AddSystem(s.stepPhysics)
	s.ecs.AddSystem(s.updatePickups)
	s.ecs.AddSystem(s.updateLifecycle)
	s.ecs.AddSystem(s.publishMatch)

	s.store.MutateMatch(func(m *netcomponents.NetMatchData) {
		m.Tick = s.clock.Tick()
		m.TickRate = s.clock.TickRate()
	})
	return s
}

func (s *Session) Store() *replica.Store     { return s.store }
func (s *Session) Clock() ticktimer.Clock    { return s.clock }
func (s *Session) Events() *Broadcaster      { return s.events }
func (s *Session) Lifecycle() *Lifecycle     { return s.lifecycle }
func (s *Session) Terrain() *Terrain         { return s.terrain }
func (s *Session) Pickups() *Pickups         { return s.pickups }
func (s *Session) Abilities() *AbilityEngine { return s.abilities }

// Join adds a player to the lobby.
func (s *Session) Join(id netconfig.PlayerID, name string) error {
	return s.lifecycle.Join(id, name)
}

// Leave removes a player at any lifecycle state.
func (s *Session) Leave(id netconfig.PlayerID) {
	s.inputs.Remove(id)
	s.lifecycle.Leave(id)
}

func (s *Session) SetReady(id netconfig.PlayerID) {
	s.lifecycle.SetReady(id)
}

// PushInput queues a committed frame for id. Unknown players are refused.
func (s *Session) PushInput(id netconfig.PlayerID, frame netinput.Frame) bool {
	if !s.store.Has(id) {
		return false
	}
	return s.inputs.Push(id, frame)
}

// Tick runs one simulation step.
func (s *Session) Tick() {
	s.ecs.Update()
}

func (s *Session) advanceClock(_ *ecs.ECS) {
	s.clock.Advance()
}

func (s *Session) runAbilities(_ *ecs.ECS) {
	for _, id := range s.store.IDs() {
		s.abilities.Step(id, s.inputs.Pop(id))
	}
}

func (s *Session) checkDeaths(_ *ecs.ECS) {
	for _, id := range s.store.IDs() {
		if s.abilities.CheckDeath(id) {
			s.lifecycle.Respawn(id)
		}
	}
}

func (s *Session) stepPhysics(_ *ecs.ECS) {
	s.world.Step()
	for _, id := range s.store.IDs() {
		s.store.SetKinematics(id,
			netcomponents.PositionOf(s.world.Position(id)),
			netcomponents.VelocityOf(s.world.Velocity(id)),
		)
	}
}

func (s *Session) updatePickups(_ *ecs.ECS) {
	s.pickups.Tick()
}

func (s *Session) updateLifecycle(_ *ecs.ECS) {
	s.lifecycle.Tick()
}

// publishMatch stamps the singleton with this tick and the table digest.
func (s *Session) publishMatch(_ *ecs.ECS) {
	digest, err := s.store.Digest()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to digest player table")
	}
	s.store.MutateMatch(func(m *netcomponents.NetMatchData) {
		m.Tick = s.clock.Tick()
		m.TickRate = s.clock.TickRate()
		m.Digest = digest
	})
}
