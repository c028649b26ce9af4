// Package netconfig defines lightweight types shared between client and server
// for network serialization. It must have zero dependencies on ebiten or any
// graphics library so the dedicated server binary stays headless.
package netconfig

// PlayerID is the stable identity of a joined player. Zero is never assigned.
type PlayerID uint32

// NoPlayer is the zero PlayerID.
const NoPlayer PlayerID = 0

// BlockID identifies a breakable terrain block within a course.
type BlockID uint32

// PickupID identifies a time pickup for the lifetime of a session.
type PickupID uint32

// MatchState is the replicated phase of the session.
type MatchState int

const (
	MatchEnded MatchState = iota // lobby and post-match
	MatchGoing                   // active match
)

func (m MatchState) String() string {
	switch m {
	case MatchEnded:
		return "ended"
	case MatchGoing:
		return "going"
	}
	return "unknown"
}

// Phase is the presentation view of the lifecycle. Countdown is a sub-phase
// of MatchEnded and has no MatchState value of its own.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseCountdown
	PhaseGoing
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseCountdown:
		return "countdown"
	case PhaseGoing:
		return "going"
	}
	return "unknown"
}

// Ability indexes the per-player cooldown table.
type Ability int

const (
	AbilityJump Ability = iota // double jump cooldown
	AbilityGrapple
	AbilityGlide
	AbilityBreak
	AbilityLaser
	AbilityCount // Must be last - used for array sizing
)

func (a Ability) String() string {
	switch a {
	case AbilityJump:
		return "jump"
	case AbilityGrapple:
		return "grapple"
	case AbilityGlide:
		return "glide"
	case AbilityBreak:
		return "break"
	case AbilityLaser:
		return "laser"
	}
	return "unknown"
}

// Sound is a fire-and-forget audio cue.
type Sound int

const (
	SoundJump Sound = iota
	SoundHook
	SoundLaser
	SoundBreak
	SoundDeath
	SoundWin
	SoundStart
	SoundTimeout
	SoundTimerAlert
	SoundPickup
	SoundMusicStart
	SoundMusicStop
)

// AbilitySound maps an ability effect to its audio cue.
func AbilitySound(a Ability) Sound {
	switch a {
	case AbilityGrapple:
		return SoundHook
	case AbilityLaser:
		return SoundLaser
	case AbilityBreak:
		return SoundBreak
	}
	return SoundJump
}
