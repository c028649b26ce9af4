package systems

import (
	"github.com/SpeedyZooba/blocky-climb/network"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Binding lists the keys and mouse buttons that hold one input button.
type Binding struct {
	Keys  []ebiten.Key
	Mouse []ebiten.MouseButton
}

var ButtonBindings = map[netinput.Button]Binding{
	netinput.ButtonJump:    {Keys: []ebiten.Key{ebiten.KeySpace}},
	netinput.ButtonGlide:   {Keys: []ebiten.Key{ebiten.KeyShiftLeft}},
	netinput.ButtonBreak:   {Keys: []ebiten.Key{ebiten.KeyControlLeft}},
	netinput.ButtonGrapple: {Mouse: []ebiten.MouseButton{ebiten.MouseButtonRight}},
	netinput.ButtonLaser:   {Mouse: []ebiten.MouseButton{ebiten.MouseButtonLeft}},
}

var (
	moveLeftKeys  = []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft}
	moveRightKeys = []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}
	moveUpKeys    = []ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}
	moveDownKeys  = []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown}
	readyKeys     = []ebiten.Key{ebiten.KeyR}
	captureKeys   = []ebiten.Key{ebiten.KeyEnter, ebiten.KeyEscape}
)

// Sampler polls the keyboard and mouse once per client frame. Input only
// counts while the cursor is captured.
type Sampler struct {
	settings InputSettings
	captured bool

	lastX, lastY int
	hasLast      bool

	log zerolog.Logger
}

func NewSampler(settings InputSettings) *Sampler {
	return &Sampler{
		settings: settings,
		log:      log.With().Str("component", "input").Logger(),
	}
}

func (s *Sampler) SetSettings(settings InputSettings) { s.settings = settings }
func (s *Sampler) Captured() bool                     { return s.captured }

// ReadyRequested reports whether the ready key went down this frame.
func (s *Sampler) ReadyRequested() bool {
	return s.captured && anyKeyJustPressed(readyKeys)
}

// Update toggles cursor capture and reads one sample. The second result is
// false while the cursor is free; the sample is then empty so held buttons
// are released.
func (s *Sampler) Update() (network.Sample, bool) {
	if anyKeyJustPressed(captureKeys) {
		s.setCaptured(!s.captured)
	}
	if !s.captured {
		return network.Sample{}, false
	}

	x, y := ebiten.CursorPosition()
	var look mgl64.Vec2
	if s.hasLast {
		look = LookDelta(float64(x-s.lastX), float64(y-s.lastY), s.settings)
	}
	s.lastX, s.lastY, s.hasLast = x, y, true

	var buttons netinput.Buttons
	for button, binding := range ButtonBindings {
		buttons.Set(button, binding.held())
	}

	return network.Sample{
		Move: MoveAxis(
			anyKeyPressed(moveLeftKeys), anyKeyPressed(moveRightKeys),
			anyKeyPressed(moveUpKeys), anyKeyPressed(moveDownKeys),
		),
		Buttons: buttons,
		Look:    look,
	}, true
}

func (s *Sampler) setCaptured(captured bool) {
	s.captured = captured
	s.hasLast = false
	if captured {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
	s.log.Debug().Bool("captured", captured).Msg("cursor capture")
}

// LookDelta converts pointer motion in pixels to a pitch/yaw delta in
// degrees. Moving the pointer up raises the pitch unless pitch is inverted.
func LookDelta(dx, dy float64, settings InputSettings) mgl64.Vec2 {
	pitch := -dy * settings.Sensitivity
	if settings.InvertPitch {
		pitch = -pitch
	}
	return mgl64.Vec2{pitch, dx * settings.Sensitivity}
}

// MoveAxis folds the four direction keys into an axis. Opposite keys cancel.
func MoveAxis(left, right, up, down bool) mgl64.Vec2 {
	var v mgl64.Vec2
	if left {
		v[0]--
	}
	if right {
		v[0]++
	}
	if up {
		v[1]++
	}
	if down {
		v[1]--
	}
	return v
}

func (b Binding) held() bool {
	if anyKeyPressed(b.Keys) {
		return true
	}
	for _, m := range b.Mouse {
		if ebiten.IsMouseButtonPressed(m) {
			return true
		}
	}
	return false
}

func anyKeyPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

func anyKeyJustPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

const sensitivityStep = 1.1

// AdjustSettings applies the in-game settings keys: brackets scale the
// sensitivity and I flips pitch inversion. The bool reports a change.
func AdjustSettings(s InputSettings) (InputSettings, bool) {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		return s.Scale(sensitivityStep), true
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		return s.Scale(1 / sensitivityStep), true
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		s.InvertPitch = !s.InvertPitch
		return s, true
	}
	return s, false
}
