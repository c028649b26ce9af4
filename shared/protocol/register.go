package protocol

import (
	"fmt"

	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetPosition uint = 10
	SyncIDNetVelocity uint = 11
	SyncIDNetPlayer   uint = 12
	SyncIDNetMatch    uint = 13
	SyncIDNetPickup   uint = 14
	SyncIDNetBlock    uint = 15
)

// Interpolation IDs (uint8 for WithInterpFn)
const (
	InterpIDNetPosition uint8 = 10
	InterpIDNetVelocity uint8 = 11
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
func RegisterComponents() error {
	// Positions and velocities interpolate for smooth remote bodies
	if err := esync.RegisterComponent(
		SyncIDNetPosition,
		netcomponents.NetPositionData{},
		netcomponents.NetPosition,
		esync.WithInterpFn(InterpIDNetPosition, netcomponents.LerpNetPosition),
	); err != nil {
		return fmt.Errorf("register position: %w", err)
	}

	if err := esync.RegisterComponent(
		SyncIDNetVelocity,
		netcomponents.NetVelocityData{},
		netcomponents.NetVelocity,
		esync.WithInterpFn(InterpIDNetVelocity, netcomponents.LerpNetVelocity),
	); err != nil {
		return fmt.Errorf("register velocity: %w", err)
	}

	// Discrete state: no interpolation
	if err := esync.RegisterComponent(
		SyncIDNetPlayer,
		netcomponents.NetPlayerData{},
		netcomponents.NetPlayer,
	); err != nil {
		return fmt.Errorf("register player: %w", err)
	}

	if err := esync.RegisterComponent(
		SyncIDNetMatch,
		netcomponents.NetMatchData{},
		netcomponents.NetMatch,
	); err != nil {
		return fmt.Errorf("register match: %w", err)
	}

	if err := esync.RegisterComponent(
		SyncIDNetPickup,
		netcomponents.NetPickupData{},
		netcomponents.NetPickup,
	); err != nil {
		return fmt.Errorf("register pickup: %w", err)
	}

	if err := esync.RegisterComponent(
		SyncIDNetBlock,
		netcomponents.NetBlockData{},
		netcomponents.NetBlock,
	); err != nil {
		return fmt.Errorf("register block: %w", err)
	}

	return nil
}
