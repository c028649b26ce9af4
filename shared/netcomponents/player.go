package netcomponents

import (
	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/yohamta/donburi"
)

// NetPlayerData is the replicated state of one player. Only the authority
// writes it; peers hold a mirrored copy.
type NetPlayerData struct {
	ID        netconfig.PlayerID
	JoinOrder uint64 // insertion order, preserved on mirrors
	Nickname  string

	Health    int
	MaxHealth int
	Ready     bool
	Score     float64

	Cooldowns   [netconfig.AbilityCount]ticktimer.Timer
	PrevButtons netinput.Buttons

	Gliding   bool
	GlideLeft float64 // glide resource in [0, 1]

	Look gamemath.LookRotation

	// Respawn anchor
	SpawnX, SpawnY float64
	SpawnLook      gamemath.LookRotation

	Dead         bool   // set once the death for this life has been reported
	LastInputSeq uint32 // last input sequence applied by the authority
}

var NetPlayer = donburi.NewComponentType[NetPlayerData]()

// InflictDamage lowers health without going below zero.
func (p *NetPlayerData) InflictDamage(damage int) {
	if damage <= 0 {
		return
	}
	p.Health -= damage
	if p.Health < 0 {
		p.Health = 0
	}
}

// Restore refills health and starts a new life.
func (p *NetPlayerData) Restore() {
	p.Health = p.MaxHealth
	p.Dead = false
}

// ResetAbilities clears every cooldown and refills the glide resource.
func (p *NetPlayerData) ResetAbilities() {
	for i := range p.Cooldowns {
		p.Cooldowns[i] = ticktimer.None()
	}
	p.Gliding = false
	p.GlideLeft = 1
}
