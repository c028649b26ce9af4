package core

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/replica"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/go-gl/mathgl/mgl64"
	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Lifecycle drives the match state machine:
//
//	Ended (lobby) -> countdown -> Going -> Ended -> reset to lobby
//
// The countdown is a sub-phase of Ended tracked in the match singleton.
type Lifecycle struct {
	cfg     *config.Config
	course  *leveldata.Course
	store   *replica.Store
	world   World
	terrain *Terrain
	pickups *Pickups
	events  *Broadcaster
	clock   ticktimer.Clock
	rng     *rand.Rand
	log     zerolog.Logger
}

func NewLifecycle(cfg *config.Config, course *leveldata.Course, store *replica.Store, world World, terrain *Terrain, pickups *Pickups, events *Broadcaster, clock ticktimer.Clock, rng *rand.Rand) *Lifecycle {
	l := &Lifecycle{
		cfg:     cfg,
		course:  course,
		store:   store,
		world:   world,
		terrain: terrain,
		pickups: pickups,
		events:  events,
		clock:   clock,
		rng:     rng,
		log:     log.With().Str("component", "lifecycle").Logger(),
	}
	if course == nil {
		l.log.Warn().Msg("no course loaded, matches will not start")
	}
	pickups.OnTaken(l.ApplyPickup)
	return l
}

func (l *Lifecycle) lobbyPivot() (mgl64.Vec2, float64) {
	if l.course == nil {
		return mgl64.Vec2{}, l.cfg.Match.LobbyRadius
	}
	p := l.course.LobbyPivot
	r := p.Radius
	if r == 0 {
		r = l.cfg.Match.LobbyRadius
	}
	return mgl64.Vec2{p.X, p.Y}, r
}

func (l *Lifecycle) lobbyPlacement() (mgl64.Vec2, gamemath.LookRotation) {
	pivot, radius := l.lobbyPivot()
	pos := gamemath.LobbyPoint(pivot, radius, l.rng.Float64()*2-1)
	return pos, gamemath.LookAt(pos, pivot)
}

// Join spawns a player in the lobby. A full session rejects the join and
// leaves prior state untouched.
func (l *Lifecycle) Join(id netconfig.PlayerID, name string) error {
	if l.store.Full() {
		return replica.ErrCapacity
	}
	pos, look := l.lobbyPlacement()
	p := netcomponents.NetPlayerData{
		ID:        id,
		Nickname:  name,
		Health:    l.cfg.Player.MaxHealth,
		MaxHealth: l.cfg.Player.MaxHealth,
		GlideLeft: 1,
		Look:      look,
		SpawnX:    pos.X(),
		SpawnY:    pos.Y(),
		SpawnLook: look,
	}
	if err := l.store.Insert(p, netcomponents.PositionOf(pos)); err != nil {
		return err
	}
	l.world.AddBody(id, pos)
	l.log.Info().Uint32("player", uint32(id)).Str("name", name).Int("players", l.store.Len()).Msg("Player joined")
	return nil
}

// Leave despawns a player. Leaving mid-match does not pause the match.
func (l *Lifecycle) Leave(id netconfig.PlayerID) {
	if !l.store.Remove(id) {
		return
	}
	l.world.RemoveBody(id)
	l.store.MutateMatch(func(m *netcomponents.NetMatchData) {
		var kept []netconfig.PlayerID
		for _, p := range m.Participants {
			if p != id {
				kept = append(kept, p)
			}
		}
		m.Participants = kept
	})
	l.log.Info().Uint32("player", uint32(id)).Int("players", l.store.Len()).Msg("Player left")
}

// SetReady records a ready-up. The first ready player of a lobby starts the
// countdown; readies during a match are ignored.
func (l *Lifecycle) SetReady(id netconfig.PlayerID) {
	m := l.store.Match()
	if m.State == netconfig.MatchGoing {
		l.log.Debug().Uint32("player", uint32(id)).Msg("ignoring ready during match")
		return
	}
	if !l.store.Mutate(id, func(p *netcomponents.NetPlayerData) { p.Ready = true }) {
		return
	}
	l.log.Info().Uint32("player", uint32(id)).Msg("Player ready")

	if m.Countdown > 0 || m.LobbyReady {
		return
	}
	steps := l.cfg.Match.CountdownSteps
	l.store.MutateMatch(func(m *netcomponents.NetMatchData) {
		m.Countdown = steps
		m.CountdownTimer = ticktimer.FromDuration(l.clock, l.cfg.Match.CountdownStep)
	})
	Publish(l.events, messages.CountdownEvent{Value: steps})
}

// Tick advances the state machine. A session without players is frozen.
func (l *Lifecycle) Tick() {
	if l.store.Len() == 0 {
		return
	}
	m := l.store.Match()
	switch m.State {
	case netconfig.MatchEnded:
		l.tickLobby(m)
	case netconfig.MatchGoing:
		l.updateScores(m)
		if l.checkZone(m) {
			return
		}
		l.checkTimeout(m)
	}
}

func (l *Lifecycle) tickLobby(m netcomponents.NetMatchData) {
	if m.LobbyReady {
		l.start()
		return
	}
	if m.Countdown == 0 || !m.CountdownTimer.Expired(l.clock) {
		return
	}

	next := m.Countdown - 1
	l.store.MutateMatch(func(m *netcomponents.NetMatchData) {
		m.Countdown = next
		if next == 0 {
			m.CountdownTimer = ticktimer.None()
			m.LobbyReady = true
			return
		}
		m.CountdownTimer = ticktimer.FromDuration(l.clock, l.cfg.Match.CountdownStep)
	})
	if next > 0 {
		Publish(l.events, messages.CountdownEvent{Value: next})
	}
}

func (l *Lifecycle) start() {
	var ready []netconfig.PlayerID
	l.store.Each(func(p netcomponents.NetPlayerData) {
		if p.Ready {
			ready = append(ready, p.ID)
		}
	})
	if len(ready) == 0 || l.course == nil {
		l.store.MutateMatch(func(m *netcomponents.NetMatchData) { m.LobbyReady = false })
		if l.course == nil {
			l.log.Warn().Msg("cannot start match without a course")
		} else {
			l.log.Info().Msg("countdown cancelled, nobody is ready")
		}
		return
	}

	l.terrain.Restore()
	l.pickups.Clear()

	pivot := mgl64.Vec2{l.course.SpawnPivot.X, l.course.SpawnPivot.Y}
	radius := l.course.SpawnPivot.Radius
	if radius == 0 {
		radius = l.cfg.Match.SpawnRadius
	}
	points := gamemath.SpawnRing(pivot, radius, len(ready), l.rng.Float64()*360)

	for i, id := range ready {
		pos := points[i]
		look := gamemath.LookAt(pos, pivot)
		l.place(id, pos, look)
		l.store.Mutate(id, func(p *netcomponents.NetPlayerData) {
			p.Restore()
			p.ResetAbilities()
			p.Score = 0
		})
		Publish(l.events, messages.SpawnPlacedEvent{Player: id, X: pos.X(), Y: pos.Y(), Pitch: look.Pitch, Yaw: look.Yaw})
	}

	l.store.MutateMatch(func(m *netcomponents.NetMatchData) {
		m.State = netconfig.MatchGoing
		m.Participants = ready
		m.Winner, m.HasWinner = netconfig.NoPlayer, false
		m.LobbyReady = false
		m.Countdown = 0
		m.CountdownTimer = ticktimer.None()
		m.MatchTimer = ticktimer.FromDuration(l.clock, l.cfg.Match.Duration)
	})
	Publish(l.events, messages.MatchStartedEvent{Participants: ready, DurationSeconds: l.cfg.Match.Duration.Seconds()})
	l.pickups.Begin(mgl64.Vec2{l.course.PickupStart.X, l.course.PickupStart.Y})

	l.log.Info().Int("participants", len(ready)).Dur("duration", l.cfg.Match.Duration).Msg("Match started")
}

// place moves a body and makes pos the player's respawn anchor.
func (l *Lifecycle) place(id netconfig.PlayerID, pos mgl64.Vec2, look gamemath.LookRotation) {
	l.world.Teleport(id, pos)
	l.world.SetVelocity(id, mgl64.Vec2{})
	l.world.SetGliding(id, false)
	l.store.SetKinematics(id, netcomponents.PositionOf(pos), netcomponents.NetVelocityData{})
	l.store.Mutate(id, func(p *netcomponents.NetPlayerData) {
		p.Look = look
		p.SpawnX, p.SpawnY = pos.X(), pos.Y()
		p.SpawnLook = look
	})
}

// updateScores keeps each participant's best height above the lobby floor.
func (l *Lifecycle) updateScores(m netcomponents.NetMatchData) {
	floor := l.course.FloorY()
	for _, id := range m.Participants {
		h := gamemath.Height(floor, l.world.Position(id).Y(), l.cfg.Player.UnitsPerMetre)
		l.store.Mutate(id, func(p *netcomponents.NetPlayerData) {
			p.Score = math.Max(p.Score, h)
		})
	}
}

// checkZone declares the first participant in store order inside the finish
// zone the winner.
func (l *Lifecycle) checkZone(m netcomponents.NetMatchData) bool {
	if m.HasWinner {
		return false
	}
	for _, id := range l.store.IDs() {
		if m.IsParticipant(id) && l.world.InZone(id) {
			l.endMatch(opt.Some[netconfig.PlayerID](id), true)
			return true
		}
	}
	return false
}

func (l *Lifecycle) checkTimeout(m netcomponents.NetMatchData) {
	if !m.MatchTimer.Expired(l.clock) {
		return
	}
	Publish(l.events, messages.TimeOutEvent{})
	l.endMatch(l.TimeoutWinner(), false)
}

// TimeoutWinner picks the highest-scoring participant. Ties go to whoever
// comes first in store order; no participants means no winner.
func (l *Lifecycle) TimeoutWinner() opt.Option[netconfig.PlayerID] {
	m := l.store.Match()
	winner := opt.None[netconfig.PlayerID]()
	best := math.Inf(-1)
	l.store.Each(func(p netcomponents.NetPlayerData) {
		if !m.IsParticipant(p.ID) {
			return
		}
		if p.Score > best {
			best = p.Score
			winner = opt.Some[netconfig.PlayerID](p.ID)
		}
	})
	return winner
}

func (l *Lifecycle) endMatch(winner opt.Option[netconfig.PlayerID], byZone bool) {
	ev := messages.MatchEndedEvent{ByZone: byZone}
	if opt.IsSome(winner) {
		ev.Winner, ev.HasWinner = winner.Value, true
	}

	l.store.MutateMatch(func(m *netcomponents.NetMatchData) {
		m.MatchTimer = ticktimer.None()
		m.Winner, m.HasWinner = ev.Winner, ev.HasWinner
		m.State = netconfig.MatchEnded
	})
	Publish(l.events, ev)
	l.log.Info().Bool("zone", byZone).Bool("has_winner", ev.HasWinner).Uint32("winner", uint32(ev.Winner)).Msg("Match ended")

	l.reset()
}

// reset returns every player to the lobby with a clean course.
func (l *Lifecycle) reset() {
	for _, id := range l.store.IDs() {
		pos, look := l.lobbyPlacement()
		l.place(id, pos, look)
		l.store.Mutate(id, func(p *netcomponents.NetPlayerData) {
			p.Ready = false
			p.Restore()
			p.ResetAbilities()
		})
	}
	l.store.MutateMatch(func(m *netcomponents.NetMatchData) {
		m.Participants = nil
		m.LobbyReady = false
		m.Countdown = 0
		m.CountdownTimer = ticktimer.None()
	})
	l.terrain.Restore()
	l.pickups.Clear()
	Publish(l.events, messages.CourseResetEvent{})
	l.log.Info().Msg("Course reset")
}

// ApplyPickup adjusts the remaining match time. The roll is drawn from 1-10;
// a roll within DecreaseChance*10 shortens the match.
func (l *Lifecycle) ApplyPickup(pickup netcomponents.NetPickupData, by netconfig.PlayerID) bool {
	m := l.store.Match()
	if m.State != netconfig.MatchGoing {
		return false
	}
	remaining := m.MatchTimer.Remaining(l.clock)
	if opt.IsNone(remaining) {
		return false
	}

	roll := l.rng.IntN(10) + 1
	delta := time.Duration(pickup.DeltaSeconds * float64(time.Second))
	adjusted, decreased := gamemath.AdjustRemaining(remaining.Value, delta, pickup.DecreaseChance, roll)

	l.store.MutateMatch(func(m *netcomponents.NetMatchData) {
		m.MatchTimer = ticktimer.FromDuration(l.clock, adjusted)
	})
	Publish(l.events, messages.PickupTakenEvent{
		Pickup:       pickup.ID,
		Player:       by,
		DeltaSeconds: pickup.DeltaSeconds,
		Decreased:    decreased,
	})
	l.log.Debug().Int("roll", roll).Bool("decreased", decreased).Dur("remaining", adjusted).Msg("pickup applied")
	return true
}

// Respawn refills health and returns the player to its spawn anchor.
func (l *Lifecycle) Respawn(id netconfig.PlayerID) {
	p, ok := l.store.Get(id)
	if !ok {
		return
	}
	anchor := mgl64.Vec2{p.SpawnX, p.SpawnY}
	l.world.Teleport(id, anchor)
	l.world.SetVelocity(id, mgl64.Vec2{})
	l.world.SetGliding(id, false)
	l.store.SetKinematics(id, netcomponents.PositionOf(anchor), netcomponents.NetVelocityData{})
	l.store.Mutate(id, func(p *netcomponents.NetPlayerData) {
		p.Restore()
		p.Look = p.SpawnLook
		p.Gliding, p.GlideLeft = false, 1
	})
}
