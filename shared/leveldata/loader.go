package leveldata

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/lafriks/go-tiled"
)

// ErrMissingObject is returned by Validate when a required marker is absent.
var ErrMissingObject = errors.New("course object missing")

// Layer and object names understood by the loader.
const (
	layerTerrain = "terrain"
	groupWalls   = "Walls"
	groupBlocks  = "Blocks"
	groupZones   = "Zones"
	groupMarkers = "Markers"

	objFinish      = "Finish"
	objSpawnPivot  = "SpawnPivot"
	objLobbyPivot  = "LobbyPivot"
	objPickupPivot = "PickupPivot"
	objPickupStart = "PickupStart"
)

// LoadCourse parses a TMX file. It takes an fs.FS so callers can pass
// embed.FS (client) or os.DirFS (server).
func LoadCourse(fsys fs.FS, tmxPath string) (*Course, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	course := &Course{
		Name:      strings.TrimSuffix(filepath.Base(tmxPath), ".tmx"),
		MapWidth:  levelMap.Width * levelMap.TileWidth,
		MapHeight: levelMap.Height * levelMap.TileHeight,
	}

	// Solid tiles from the terrain layer
	tileW := float64(levelMap.TileWidth)
	tileH := float64(levelMap.TileHeight)
	for _, layer := range levelMap.Layers {
		if layer.Name != layerTerrain {
			continue
		}
		for y := 0; y < levelMap.Height; y++ {
			for x := 0; x < levelMap.Width; x++ {
				tile := layer.Tiles[y*levelMap.Width+x]
				if tile.IsNil() {
					continue
				}
				course.Walls = append(course.Walls, Rect{
					X: float64(x) * tileW,
					Y: float64(y) * tileH,
					W: tileW,
					H: tileH,
				})
			}
		}
		break
	}

	found := map[string]bool{}
	for _, og := range levelMap.ObjectGroups {
		switch og.Name {
		case groupWalls:
			for _, o := range og.Objects {
				course.Walls = append(course.Walls, rectOf(o))
			}
		case groupBlocks:
			for _, o := range og.Objects {
				course.Blocks = append(course.Blocks, Block{
					ID:     netconfig.BlockID(o.ID),
					Rect:   rectOf(o),
					Finish: o.Name == objFinish || o.Properties.GetBool("finish"),
				})
			}
		case groupZones:
			for _, o := range og.Objects {
				if o.Name == objFinish {
					course.FinishZone = rectOf(o)
					course.HasZone = true
					found[objFinish] = true
				}
			}
		case groupMarkers:
			for _, o := range og.Objects {
				pivot := Pivot{
					X:         o.X,
					Y:         o.Y,
					Radius:    o.Properties.GetFloat("radius"),
					MinHeight: o.Properties.GetFloat("minHeight"),
					MaxHeight: o.Properties.GetFloat("maxHeight"),
				}
				switch o.Name {
				case objSpawnPivot:
					course.SpawnPivot = pivot
				case objLobbyPivot:
					course.LobbyPivot = pivot
				case objPickupPivot:
					course.PickupPivot = pivot
				case objPickupStart:
					course.PickupStart = Point{X: o.X, Y: o.Y}
				default:
					continue
				}
				found[o.Name] = true
			}
		}
	}

	for _, name := range []string{objFinish, objSpawnPivot, objLobbyPivot, objPickupPivot, objPickupStart} {
		if !found[name] {
			course.Missing = append(course.Missing, name)
		}
	}

	sort.Slice(course.Blocks, func(i, j int) bool {
		return course.Blocks[i].ID < course.Blocks[j].ID
	})

	return course, nil
}

// Validate reports every missing marker, wrapped in ErrMissingObject.
func (c *Course) Validate() error {
	if len(c.Missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingObject, strings.Join(c.Missing, ", "))
}

func rectOf(o *tiled.Object) Rect {
	return Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height}
}
