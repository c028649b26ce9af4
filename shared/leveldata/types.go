// Package leveldata provides TMX course parsing shared between client and server.
// It depends on no engine, ECS or physics package; it is pure data.
package leveldata

import "github.com/SpeedyZooba/blocky-climb/shared/netconfig"

// Course holds everything the simulation needs from a TMX course file.
type Course struct {
	Name      string
	MapWidth  int
	MapHeight int

	Walls  []Rect  // immutable solids
	Blocks []Block // breakable terrain, sorted by ID

	FinishZone Rect
	HasZone    bool

	SpawnPivot  Pivot // match start ring
	LobbyPivot  Pivot // lobby floor; its Y is the score baseline
	PickupPivot Pivot // periodic pickup band
	PickupStart Point // first pickup of every match

	// Missing lists marker objects the file did not define.
	Missing []string
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Block is a breakable terrain block. Finish blocks never break.
type Block struct {
	ID netconfig.BlockID
	Rect
	Finish bool
}

// Pivot is a marker with an optional radius and height band.
type Pivot struct {
	X, Y      float64
	Radius    float64
	MinHeight float64
	MaxHeight float64
}

// Point is a bare marker position.
type Point struct {
	X, Y float64
}

// FloorY is the y of the lobby floor used as the score baseline.
func (c *Course) FloorY() float64 {
	return c.LobbyPivot.Y
}
