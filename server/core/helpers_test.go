package core

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/go-gl/mathgl/mgl64"
	opt "github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/require"
)

type fakeBody struct {
	pos, vel mgl64.Vec2
	grounded bool
	gliding  bool
	dir      float64
	impulses []mgl64.Vec2
}

type fakeBlock struct {
	finish bool
	broken bool
}

// fakeWorld is a scripted physics oracle. Step does not move anything.
type fakeWorld struct {
	bodies map[netconfig.PlayerID]*fakeBody
	blocks map[netconfig.BlockID]*fakeBlock
	zone   map[netconfig.PlayerID]bool
	ray    func(origin, dir mgl64.Vec2, maxDist float64, ignore netconfig.PlayerID) opt.Option[Hit]
	steps  int
}

func newFakeWorld(course *leveldata.Course) *fakeWorld {
	w := &fakeWorld{
		bodies: make(map[netconfig.PlayerID]*fakeBody),
		blocks: make(map[netconfig.BlockID]*fakeBlock),
		zone:   make(map[netconfig.PlayerID]bool),
	}
	for _, b := range course.Blocks {
		w.blocks[b.ID] = &fakeBlock{finish: b.Finish}
	}
	return w
}

func (w *fakeWorld) body(id netconfig.PlayerID) *fakeBody {
	if b, ok := w.bodies[id]; ok {
		return b
	}
	return &fakeBody{}
}

func (w *fakeWorld) Raycast(origin, dir mgl64.Vec2, maxDist float64, ignore netconfig.PlayerID) opt.Option[Hit] {
	if w.ray == nil {
		return opt.None[Hit]()
	}
	res := w.ray(origin, dir, maxDist, ignore)
	if opt.IsSome(res) && res.Value.Distance > maxDist {
		return opt.None[Hit]()
	}
	return res
}

func (w *fakeWorld) IsGrounded(id netconfig.PlayerID) bool { return w.body(id).grounded }

func (w *fakeWorld) ApplyImpulse(id netconfig.PlayerID, impulse mgl64.Vec2) {
	b := w.body(id)
	b.vel = b.vel.Add(impulse)
	b.impulses = append(b.impulses, impulse)
	if impulse.Y() < 0 {
		b.grounded = false
	}
}

func (w *fakeWorld) SetVelocity(id netconfig.PlayerID, v mgl64.Vec2) { w.body(id).vel = v }
func (w *fakeWorld) Velocity(id netconfig.PlayerID) mgl64.Vec2       { return w.body(id).vel }
func (w *fakeWorld) Position(id netconfig.PlayerID) mgl64.Vec2       { return w.body(id).pos }
func (w *fakeWorld) Teleport(id netconfig.PlayerID, c mgl64.Vec2)    { w.body(id).pos = c }
func (w *fakeWorld) SetInputDirection(id netconfig.PlayerID, d float64) {
	w.body(id).dir = d
}
func (w *fakeWorld) SetGliding(id netconfig.PlayerID, g bool) { w.body(id).gliding = g }

func (w *fakeWorld) AddBody(id netconfig.PlayerID, center mgl64.Vec2) {
	w.bodies[id] = &fakeBody{pos: center, grounded: true}
}

func (w *fakeWorld) RemoveBody(id netconfig.PlayerID) { delete(w.bodies, id) }
func (w *fakeWorld) Step()                            { w.steps++ }

func (w *fakeWorld) BreakBlock(id netconfig.BlockID) bool {
	b, ok := w.blocks[id]
	if !ok || b.finish || b.broken {
		return false
	}
	b.broken = true
	return true
}

func (w *fakeWorld) RestoreBlocks() {
	for _, b := range w.blocks {
		b.broken = false
	}
}

func (w *fakeWorld) InZone(id netconfig.PlayerID) bool { return w.zone[id] }

func (w *fakeWorld) Overlaps(id netconfig.PlayerID, center mgl64.Vec2, radius float64) bool {
	b, ok := w.bodies[id]
	return ok && b.pos.Sub(center).Len() <= radius
}

// eventLog records broadcasts in order.
type eventLog struct {
	events []messages.Event
}

func (l *eventLog) HandleEvent(ev messages.Event) { l.events = append(l.events, ev) }

func eventsOf[T messages.Event](l *eventLog) []T {
	var out []T
	for _, ev := range l.events {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

func testCourse() *leveldata.Course {
	return &leveldata.Course{
		Name:      "test",
		MapWidth:  640,
		MapHeight: 480,
		Blocks: []leveldata.Block{
			{ID: 1, Rect: leveldata.Rect{X: 96, Y: 384, W: 96, H: 16}},
			{ID: 2, Rect: leveldata.Rect{X: 256, Y: 64, W: 128, H: 16}, Finish: true},
		},
		HasZone:    true,
		FinishZone: leveldata.Rect{X: 256, Y: 16, W: 128, H: 48},
		// Below the lobby floor so spawning scores nothing
		SpawnPivot:  leveldata.Pivot{X: 320, Y: 600, Radius: 48},
		LobbyPivot:  leveldata.Pivot{X: 320, Y: 448, Radius: 96},
		PickupPivot: leveldata.Pivot{X: 320, Y: 440, Radius: 128, MinHeight: 32, MaxHeight: 160},
		PickupStart: leveldata.Point{X: 600, Y: 40},
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.TickRate = 10
	cfg.Server.MaxPlayers = 4
	cfg.Match.Duration = 10 * time.Second
	cfg.Match.CountdownSteps = 3
	cfg.Match.CountdownStep = 100 * time.Millisecond
	cfg.Player.UnitsPerMetre = 1
	cfg.Abilities.DoubleJumpCooldown = time.Second
	cfg.Abilities.LaserCooldown = time.Second
	cfg.Abilities.GrappleCooldown = 2 * time.Second
	cfg.Abilities.GlideCooldown = 2 * time.Second
	cfg.Abilities.GlideDuration = 500 * time.Millisecond
	cfg.Abilities.BreakCooldown = 500 * time.Millisecond
	cfg.Pickup.Interval = 10 * time.Second
	return &cfg
}

type harness struct {
	t       *testing.T
	cfg     *config.Config
	course  *leveldata.Course
	world   *fakeWorld
	session *Session
	log     *eventLog
	seq     map[netconfig.PlayerID]uint32
}

func newHarness(t *testing.T, tweak ...func(*config.Config)) *harness {
	cfg := testConfig()
	for _, fn := range tweak {
		fn(cfg)
	}
	course := testCourse()
	h := &harness{
		t:      t,
		cfg:    cfg,
		course: course,
		world:  newFakeWorld(course),
		log:    &eventLog{},
		seq:    make(map[netconfig.PlayerID]uint32),
	}
	h.session = NewSession(cfg, course, h.world,
		WithSinks(h.log),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	return h
}

func (h *harness) join(ids ...netconfig.PlayerID) {
	for _, id := range ids {
		require.NoError(h.t, h.session.Join(id, string(rune('A'+id-1))))
	}
}

// hold queues a frame with exactly these buttons held.
func (h *harness) hold(id netconfig.PlayerID, buttons ...netinput.Button) {
	var b netinput.Buttons
	for _, button := range buttons {
		b.Set(button, true)
	}
	h.seq[id]++
	require.True(h.t, h.session.PushInput(id, netinput.Frame{Sequence: h.seq[id], Buttons: b}))
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.session.Tick()
	}
}

func (h *harness) player(id netconfig.PlayerID) netcomponents.NetPlayerData {
	p, ok := h.session.Store().Get(id)
	require.True(h.t, ok)
	return p
}

func (h *harness) match() netcomponents.NetMatchData {
	return h.session.Store().Match()
}

// startMatch readies every joined player and runs through the countdown.
func (h *harness) startMatch() {
	for _, id := range h.session.Store().IDs() {
		h.session.SetReady(id)
	}
	h.tick(h.cfg.Match.CountdownSteps + 1)
	require.Equal(h.t, netconfig.MatchGoing, h.match().State)
}

func hitPlayer(id netconfig.PlayerID, dist float64) opt.Option[Hit] {
	return opt.Some[Hit](Hit{Kind: HitPlayer, Player: id, Distance: dist, Point: mgl64.Vec2{0, -dist}})
}
