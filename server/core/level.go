package core

import (
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/rs/zerolog/log"
	"github.com/solarlune/resolv"
)

const (
	tagSolid  = "solid"
	tagBlock  = "block"
	tagPlayer = "player"
)

// levelBlock is a breakable block and its collision object.
type levelBlock struct {
	leveldata.Block
	Object *resolv.Object
	Broken bool
}

// ServerLevel holds the collision space built from a course.
type ServerLevel struct {
	Space  *resolv.Space
	Course *leveldata.Course
	Walls  []leveldata.Rect
	Blocks []*levelBlock // sorted by ID
	byID   map[netconfig.BlockID]*levelBlock
}

// NewServerLevel builds a resolv.Space from parsed course data.
func NewServerLevel(course *leveldata.Course) *ServerLevel {
	space := resolv.NewSpace(course.MapWidth, course.MapHeight, 16, 16)

	for _, r := range course.Walls {
		obj := resolv.NewObject(r.X, r.Y, r.W, r.H, tagSolid)
		obj.SetShape(resolv.NewRectangle(0, 0, r.W, r.H))
		space.Add(obj)
	}

	level := &ServerLevel{
		Space:  space,
		Course: course,
		Walls:  course.Walls,
		byID:   make(map[netconfig.BlockID]*levelBlock, len(course.Blocks)),
	}
	for _, b := range course.Blocks {
		obj := resolv.NewObject(b.X, b.Y, b.W, b.H, tagSolid, tagBlock)
		obj.SetShape(resolv.NewRectangle(0, 0, b.W, b.H))
		space.Add(obj)

		lb := &levelBlock{Block: b, Object: obj}
		level.Blocks = append(level.Blocks, lb)
		level.byID[b.ID] = lb
	}

	log.Info().
		Str("course", course.Name).
		Int("walls", len(course.Walls)).
		Int("blocks", len(course.Blocks)).
		Int("width", course.MapWidth).
		Int("height", course.MapHeight).
		Msg("Loaded course")

	return level
}

// breakBlock removes an intact, non-finish block from the space.
func (l *ServerLevel) breakBlock(id netconfig.BlockID) bool {
	b, ok := l.byID[id]
	if !ok || b.Broken || b.Finish {
		return false
	}
	l.Space.Remove(b.Object)
	b.Broken = true
	return true
}

// restore puts every broken block back. Calling it on an intact course is a no-op.
func (l *ServerLevel) restore() {
	for _, b := range l.Blocks {
		if !b.Broken {
			continue
		}
		l.Space.Add(b.Object)
		b.Broken = false
	}
}
