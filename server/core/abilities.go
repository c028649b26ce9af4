package core

import (
	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/SpeedyZooba/blocky-climb/shared/replica"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/go-gl/mathgl/mgl64"
	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BlockBreaker applies authority-validated break requests.
type BlockBreaker interface {
	Break(id netconfig.BlockID, by netconfig.PlayerID) bool
}

// AbilityEngine runs one player's abilities for one tick. Every ability is
// edge-triggered against the previous tick's buttons and gated by its own
// cooldown.
type AbilityEngine struct {
	cfg    config.AbilityConfig
	player config.PlayerConfig
	store  *replica.Store
	world  Physics
	blocks BlockBreaker
	events *Broadcaster
	clock  ticktimer.Clock
	drain  float64
	log    zerolog.Logger
}

func NewAbilityEngine(cfg *config.Config, store *replica.Store, world Physics, blocks BlockBreaker, events *Broadcaster, clock ticktimer.Clock) *AbilityEngine {
	return &AbilityEngine{
		cfg:    cfg.Abilities,
		player: cfg.Player,
		store:  store,
		world:  world,
		blocks: blocks,
		events: events,
		clock:  clock,
		drain:  gamemath.GlideDrain(cfg.Abilities.GlideDuration, clock.TickRate()),
		log:    log.With().Str("component", "abilities").Logger(),
	}
}

// abilityPass is the working copy of a player for one Step.
type abilityPass struct {
	id       netconfig.PlayerID
	p        netcomponents.NetPlayerData
	frame    netinput.Frame
	grounded bool
}

func (a *abilityPass) pressed(b netinput.Button) bool {
	return a.frame.Buttons.WasPressed(a.p.PrevButtons, b)
}

func (a *abilityPass) released(b netinput.Button) bool {
	return a.frame.Buttons.WasReleased(a.p.PrevButtons, b)
}

// Step consumes one input frame for id.
func (e *AbilityEngine) Step(id netconfig.PlayerID, frame netinput.Frame) {
	p, ok := e.store.Get(id)
	if !ok {
		return
	}
	pass := &abilityPass{id: id, p: p, frame: frame, grounded: e.world.IsGrounded(id)}

	e.jump(pass)
	e.glide(pass)

	pass.p.Look = pass.p.Look.Add(frame.Look, e.player.MaxPitch)

	e.grapple(pass)
	e.laser(pass)
	e.breakBlock(pass)
	e.drainGlide(pass)

	e.world.SetInputDirection(id, frame.Move.X())

	// Health is owned by whoever hits the player, so only ability fields are
	// written back.
	e.store.Mutate(id, func(p *netcomponents.NetPlayerData) {
		p.Cooldowns = pass.p.Cooldowns
		p.Gliding = pass.p.Gliding
		p.GlideLeft = pass.p.GlideLeft
		p.Look = pass.p.Look
		p.PrevButtons = frame.Buttons
		p.LastInputSeq = frame.Sequence
	})
}

func (e *AbilityEngine) ready(a *abilityPass, ability netconfig.Ability) bool {
	return a.p.Cooldowns[ability].ExpiredOrNotRunning(e.clock)
}

func (e *AbilityEngine) arm(a *abilityPass, ability netconfig.Ability) {
	a.p.Cooldowns[ability] = ticktimer.FromDuration(e.clock, e.cfg.Cooldown(ability))
}

func (e *AbilityEngine) eye(id netconfig.PlayerID) mgl64.Vec2 {
	return e.world.Position(id).Add(gamemath.Up.Mul(e.player.EyeOffset))
}

func (e *AbilityEngine) effect(a *abilityPass, ability netconfig.Ability, from, to mgl64.Vec2) messages.AbilityEvent {
	return messages.AbilityEvent{
		Player:  a.id,
		Ability: ability,
		FromX:   from.X(),
		FromY:   from.Y(),
		ToX:     to.X(),
		ToY:     to.Y(),
	}
}

func (e *AbilityEngine) jump(a *abilityPass) {
	if !a.pressed(netinput.ButtonJump) {
		return
	}
	pos := e.world.Position(a.id)

	// Only the double jump is announced; a ground jump has no cue
	if a.grounded {
		e.world.ApplyImpulse(a.id, gamemath.Up.Mul(e.cfg.JumpImpulse))
		return
	}
	if !e.ready(a, netconfig.AbilityJump) {
		return
	}

	v := e.world.Velocity(a.id)
	e.world.SetVelocity(a.id, mgl64.Vec2{v.X(), 0})
	e.world.ApplyImpulse(a.id, gamemath.Up.Mul(e.cfg.JumpImpulse*e.cfg.DoubleJumpMultiplier))
	e.arm(a, netconfig.AbilityJump)
	e.exitGlide(a)
	Publish(e.events, e.effect(a, netconfig.AbilityJump, pos, pos))
	e.log.Debug().Uint32("player", uint32(a.id)).Msg("double jump")
}

func (e *AbilityEngine) glide(a *abilityPass) {
	switch {
	case a.pressed(netinput.ButtonGlide):
		if a.p.Gliding || a.grounded || !e.ready(a, netconfig.AbilityGlide) || a.p.GlideLeft <= 0 {
			return
		}
		a.p.Gliding = true
		e.world.SetGliding(a.id, true)
		v := e.world.Velocity(a.id)
		e.world.SetVelocity(a.id, mgl64.Vec2{v.X(), v.Y() * e.cfg.GlideEntryDamping})
	case a.released(netinput.ButtonGlide):
		e.exitGlide(a)
	}
}

// exitGlide ends an active glide, arms its cooldown and refills the resource.
func (e *AbilityEngine) exitGlide(a *abilityPass) {
	if !a.p.Gliding {
		return
	}
	a.p.Gliding = false
	a.p.GlideLeft = 1
	e.world.SetGliding(a.id, false)
	e.arm(a, netconfig.AbilityGlide)
}

func (e *AbilityEngine) drainGlide(a *abilityPass) {
	if !a.p.Gliding {
		return
	}
	a.p.GlideLeft -= e.drain
	if a.p.GlideLeft < 1e-9 {
		a.p.GlideLeft = 0
	}
	if a.p.GlideLeft == 0 || e.world.IsGrounded(a.id) {
		e.exitGlide(a)
	}
}

func (e *AbilityEngine) grapple(a *abilityPass) {
	if !a.pressed(netinput.ButtonGrapple) || !e.ready(a, netconfig.AbilityGrapple) {
		return
	}
	eye := e.eye(a.id)
	res := e.world.Raycast(eye, a.p.Look.Forward(), e.cfg.GrappleRange, a.id)
	if opt.IsNone(res) {
		return
	}
	hit := res.Value
	if hit.Kind != HitBlock && hit.Kind != HitPlayer {
		return
	}

	// A target below still spends the cooldown but neither pulls nor hooks
	e.arm(a, netconfig.AbilityGrapple)
	if hit.Point.Y() >= eye.Y() {
		return
	}
	pull := hit.Point.Sub(eye).Normalize().Add(gamemath.Up.Mul(e.cfg.GrappleUpBias)).Normalize()
	e.world.ApplyImpulse(a.id, pull.Mul(e.cfg.GrappleImpulse))
	e.exitGlide(a)
	Publish(e.events, e.effect(a, netconfig.AbilityGrapple, eye, hit.Point))
}

// laser arms its cooldown on every attempt once ready. Only a player hit
// deals damage; terrain stops the trace.
func (e *AbilityEngine) laser(a *abilityPass) {
	if !a.pressed(netinput.ButtonLaser) || !e.ready(a, netconfig.AbilityLaser) {
		return
	}
	e.arm(a, netconfig.AbilityLaser)

	eye := e.eye(a.id)
	dir := a.p.Look.Forward()
	ev := e.effect(a, netconfig.AbilityLaser, eye, eye.Add(dir.Mul(e.cfg.LaserRange)))

	res := e.world.Raycast(eye, dir, e.cfg.LaserRange, a.id)
	if opt.IsSome(res) {
		hit := res.Value
		ev.ToX, ev.ToY = hit.Point.X(), hit.Point.Y()
		if hit.Kind == HitPlayer {
			e.store.Mutate(hit.Player, func(p *netcomponents.NetPlayerData) {
				p.InflictDamage(e.cfg.LaserDamage)
			})
			ev.HitPlayer = hit.Player
			e.log.Debug().Uint32("player", uint32(a.id)).Uint32("victim", uint32(hit.Player)).Msg("laser hit")
		}
	}
	Publish(e.events, ev)
}

func (e *AbilityEngine) breakBlock(a *abilityPass) {
	if !a.pressed(netinput.ButtonBreak) || !e.ready(a, netconfig.AbilityBreak) {
		return
	}
	eye := e.eye(a.id)
	res := e.world.Raycast(eye, a.p.Look.Forward(), e.cfg.BreakRange, a.id)
	if opt.IsNone(res) || res.Value.Kind != HitBlock {
		return
	}
	hit := res.Value
	if !e.blocks.Break(hit.Block, a.id) {
		return
	}
	e.arm(a, netconfig.AbilityBreak)
	ev := e.effect(a, netconfig.AbilityBreak, eye, hit.Point)
	ev.HitBlockID = hit.Block
	Publish(e.events, ev)
}

// CheckDeath reports a death the first time a life's health reaches zero.
func (e *AbilityEngine) CheckDeath(id netconfig.PlayerID) bool {
	p, ok := e.store.Get(id)
	if !ok || p.Health > 0 || p.Dead {
		return false
	}
	e.store.Mutate(id, func(p *netcomponents.NetPlayerData) { p.Dead = true })
	Publish(e.events, messages.PlayerDiedEvent{Player: id})
	e.log.Info().Uint32("player", uint32(id)).Msg("player died")
	return true
}
