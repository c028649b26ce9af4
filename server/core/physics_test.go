package core

import (
	"os"
	"testing"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	opt "github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T) *ResolvWorld {
	t.Helper()
	course, err := leveldata.LoadCourse(os.DirFS("../../shared/leveldata/testdata"), "course.tmx")
	require.NoError(t, err)
	cfg := config.Default()
	return NewResolvWorld(course, cfg.Player, cfg.Physics, 20)
}

func TestBodyRestsOnFloor(t *testing.T) {
	w := newTestWorld(t)
	w.AddBody(1, mgl64.Vec2{320, 448})

	w.Step()
	assert.True(t, w.IsGrounded(1))
	assert.InDelta(t, 448, w.Position(1).Y(), 1)

	w.ApplyImpulse(1, gamemath.Up.Mul(12))
	assert.False(t, w.IsGrounded(1))
	w.Step()
	assert.Less(t, w.Position(1).Y(), 448.0)
}

func TestBodyFallsAndLands(t *testing.T) {
	w := newTestWorld(t)
	w.AddBody(1, mgl64.Vec2{560, 300})

	for i := 0; i < 60; i++ {
		w.Step()
	}
	assert.True(t, w.IsGrounded(1))
	assert.InDelta(t, 448, w.Position(1).Y(), 1)
	assert.InDelta(t, 560, w.Position(1).X(), 1e-9)
}

func TestGlidingFallsSlower(t *testing.T) {
	w := newTestWorld(t)
	w.AddBody(1, mgl64.Vec2{560, 100})
	w.AddBody(2, mgl64.Vec2{590, 100})
	w.SetGliding(2, true)

	for i := 0; i < 5; i++ {
		w.Step()
	}
	assert.Greater(t, w.Position(1).Y(), w.Position(2).Y())
	assert.LessOrEqual(t, w.Velocity(2).Y(), config.Default().Physics.GlideMaxFall)
}

func TestRaycastHitsNearest(t *testing.T) {
	w := newTestWorld(t)
	origin := mgl64.Vec2{300, 440}

	res := w.Raycast(origin, gamemath.Up, 480, netconfig.NoPlayer)
	require.True(t, opt.IsSome(res))
	assert.Equal(t, HitBlock, res.Value.Kind)
	assert.Equal(t, netconfig.BlockID(12), res.Value.Block)
	assert.InDelta(t, 168, res.Value.Distance, 1e-9)
	assert.InDelta(t, 272, res.Value.Point.Y(), 1e-9)

	assert.True(t, opt.IsNone(w.Raycast(origin, gamemath.Up, 100, netconfig.NoPlayer)), "beyond range")

	left := w.Raycast(mgl64.Vec2{100, 440}, mgl64.Vec2{-1, 0}, 480, netconfig.NoPlayer)
	require.True(t, opt.IsSome(left))
	assert.Equal(t, HitSolid, left.Value.Kind)
	assert.InDelta(t, 84, left.Value.Distance, 1e-9)
}

func TestRaycastHitsPlayers(t *testing.T) {
	w := newTestWorld(t)
	w.AddBody(2, mgl64.Vec2{300, 350})
	origin := mgl64.Vec2{300, 440}

	res := w.Raycast(origin, gamemath.Up, 480, 1)
	require.True(t, opt.IsSome(res))
	assert.Equal(t, HitPlayer, res.Value.Kind)
	assert.Equal(t, netconfig.PlayerID(2), res.Value.Player)

	res = w.Raycast(origin, gamemath.Up, 480, 2)
	require.True(t, opt.IsSome(res))
	assert.Equal(t, HitBlock, res.Value.Kind, "shooter's own body is ignored")
}

func TestBrokenBlocksAreSkipped(t *testing.T) {
	w := newTestWorld(t)
	origin := mgl64.Vec2{300, 440}

	require.True(t, w.BreakBlock(12))
	assert.False(t, w.BreakBlock(12), "already broken")
	assert.False(t, w.BreakBlock(15), "finish block")
	assert.False(t, w.BreakBlock(99))

	res := w.Raycast(origin, gamemath.Up, 480, netconfig.NoPlayer)
	require.True(t, opt.IsSome(res))
	assert.Equal(t, netconfig.BlockID(15), res.Value.Block)

	w.RestoreBlocks()
	w.RestoreBlocks()
	res = w.Raycast(origin, gamemath.Up, 480, netconfig.NoPlayer)
	require.True(t, opt.IsSome(res))
	assert.Equal(t, netconfig.BlockID(12), res.Value.Block)
}

func TestFallThroughBrokenBlock(t *testing.T) {
	w := newTestWorld(t)
	w.AddBody(1, mgl64.Vec2{144, 360})

	for i := 0; i < 30; i++ {
		w.Step()
	}
	require.True(t, w.IsGrounded(1))
	assert.InDelta(t, 368, w.Position(1).Y(), 1, "standing on block 10")

	require.True(t, w.BreakBlock(10))
	for i := 0; i < 60; i++ {
		w.Step()
	}
	assert.InDelta(t, 448, w.Position(1).Y(), 1)
}

func TestZoneAndOverlap(t *testing.T) {
	w := newTestWorld(t)
	w.AddBody(1, mgl64.Vec2{320, 448})
	w.AddBody(2, mgl64.Vec2{320, 40})

	assert.False(t, w.InZone(1))
	assert.True(t, w.InZone(2))
	assert.False(t, w.InZone(3))

	assert.False(t, w.Overlaps(1, mgl64.Vec2{320, 420}, 5))
	assert.True(t, w.Overlaps(1, mgl64.Vec2{320, 420}, 14))

	w.RemoveBody(2)
	assert.False(t, w.InZone(2))
	assert.Equal(t, mgl64.Vec2{}, w.Position(2))
}

func TestTeleportClearsGround(t *testing.T) {
	w := newTestWorld(t)
	w.AddBody(1, mgl64.Vec2{320, 448})
	w.Step()
	require.True(t, w.IsGrounded(1))

	w.Teleport(1, mgl64.Vec2{560, 200})
	assert.False(t, w.IsGrounded(1))
	assert.Equal(t, mgl64.Vec2{560, 200}, w.Position(1))
}

func TestSubStepsAverageSixtyHertz(t *testing.T) {
	cases := []struct {
		rate  int
		ticks int
		want  int
	}{
		{20, 20, 60},
		{25, 25, 60},
		{45, 45, 60},
		{30, 7, 14},
	}
	for _, c := range cases {
		w := newTestWorld(t)
		w.stepRate = subStepRate / float64(c.rate)
		total := 0
		for i := 0; i < c.ticks; i++ {
			n := w.takeSteps()
			assert.GreaterOrEqual(t, n, 0)
			total += n
		}
		assert.Equal(t, c.want, total, "tick rate %d", c.rate)
	}
}

func TestFallDistanceIndependentOfTickRate(t *testing.T) {
	fall := func(rate int) float64 {
		course, err := leveldata.LoadCourse(os.DirFS("../../shared/leveldata/testdata"), "course.tmx")
		require.NoError(t, err)
		cfg := config.Default()
		w := NewResolvWorld(course, cfg.Player, cfg.Physics, rate)
		w.AddBody(1, mgl64.Vec2{320, 100})
		start := w.Position(1).Y()
		for i := 0; i < rate/5; i++ { // 200 ms
			w.Step()
		}
		return w.Position(1).Y() - start
	}
	assert.InDelta(t, fall(20), fall(25), 1e-9)
}
