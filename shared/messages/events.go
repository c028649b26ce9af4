package messages

import "github.com/SpeedyZooba/blocky-climb/shared/netconfig"

// EventHeader orders broadcasts. Seq increases by one per event within a
// session; Tick is the authority tick that issued it.
type EventHeader struct {
	Seq  uint64
	Tick int64
}

func (h EventHeader) Header() EventHeader { return h }

func (h *EventHeader) Stamp(seq uint64, tick int64) {
	h.Seq = seq
	h.Tick = tick
}

// Event is any broadcast message.
type Event interface {
	Header() EventHeader
}

// Stamper is implemented by pointers to events.
type Stamper interface {
	Stamp(seq uint64, tick int64)
}

// CountdownEvent announces one countdown step (3, 2, 1).
type CountdownEvent struct {
	EventHeader
	Value int
}

// MatchStartedEvent is broadcast when a match begins
type MatchStartedEvent struct {
	EventHeader
	Participants    []netconfig.PlayerID
	DurationSeconds float64
}

// SpawnPlacedEvent is broadcast for each participant placed on the course
type SpawnPlacedEvent struct {
	EventHeader
	Player     netconfig.PlayerID
	X, Y       float64
	Pitch, Yaw float64
}

// AbilityEvent is a one-shot ability effect (jump, hook, laser trace, break)
type AbilityEvent struct {
	EventHeader
	Player     netconfig.PlayerID
	Ability    netconfig.Ability
	FromX      float64
	FromY      float64
	ToX, ToY   float64
	HitPlayer  netconfig.PlayerID // laser victim, NoPlayer on a miss
	HitBlockID netconfig.BlockID
}

// BlockBrokenEvent is broadcast when the authority deactivates a block
type BlockBrokenEvent struct {
	EventHeader
	Block netconfig.BlockID
}

// PlayerDiedEvent is broadcast once per life
type PlayerDiedEvent struct {
	EventHeader
	Player netconfig.PlayerID
}

// PickupSpawnedEvent is broadcast when a time pickup appears
type PickupSpawnedEvent struct {
	EventHeader
	Pickup netconfig.PickupID
	X, Y   float64
}

// PickupTakenEvent is broadcast when a pickup adjusts the match timer
type PickupTakenEvent struct {
	EventHeader
	Pickup       netconfig.PickupID
	Player       netconfig.PlayerID
	DeltaSeconds float64
	Decreased    bool
}

// TimeOutEvent is broadcast when the match timer expires
type TimeOutEvent struct {
	EventHeader
}

// MatchEndedEvent is broadcast when a match ends by zone or timeout
type MatchEndedEvent struct {
	EventHeader
	Winner    netconfig.PlayerID
	HasWinner bool
	ByZone    bool
}

// CourseResetEvent is broadcast after the course is restored for the lobby
type CourseResetEvent struct {
	EventHeader
}
