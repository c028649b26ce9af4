package systems

import (
	"image/color"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/fonts"
	"github.com/SpeedyZooba/blocky-climb/network"
	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	wallColor   = color.RGBA{100, 100, 100, 255}
	blockColor  = color.RGBA{150, 110, 70, 255}
	finishColor = color.RGBA{230, 200, 40, 255}
	zoneColor   = color.RGBA{230, 200, 40, 60}
	pickupColor = color.RGBA{80, 200, 255, 255}
	localColor  = color.RGBA{80, 255, 120, 255}
	remoteColor = color.RGBA{220, 90, 220, 255}
	deadColor   = color.RGBA{90, 90, 90, 255}
	laserColor  = color.RGBA{255, 60, 60, 255}
	hookColor   = color.RGBA{200, 200, 200, 255}
)

const aimLength = 28

// View is what the course renderer needs for one frame.
type View struct {
	Course *leveldata.Course // static walls and zone; nil draws only replicated state
	Mirror *network.Mirror
	Local  netconfig.PlayerID
	Look   gamemath.LookRotation // predicted look of the local player
	Player config.PlayerConfig
}

// DrawCourse renders terrain, pickups, players and ability traces.
func DrawCourse(screen *ebiten.Image, cam *Camera, v View, effects []messages.AbilityEvent) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	off := cam.Offset(w, h)

	if v.Course != nil {
		for _, r := range v.Course.Walls {
			drawRect(screen, off, r.X, r.Y, r.W, r.H, wallColor)
		}
		if v.Course.HasZone {
			z := v.Course.FinishZone
			drawRect(screen, off, z.X, z.Y, z.W, z.H, zoneColor)
		}
	}

	for _, b := range v.Mirror.Blocks() {
		if b.Broken {
			continue
		}
		c := blockColor
		if b.Finish {
			c = finishColor
		}
		drawRect(screen, off, b.X, b.Y, b.W, b.H, c)
	}

	for _, p := range v.Mirror.Pickups() {
		at := p.Position.Vec().Add(off)
		vector.DrawFilledCircle(screen, float32(at.X()), float32(at.Y()), 6, pickupColor, true)
	}

	store := v.Mirror.Store()
	small := fonts.Small.Get()
	store.Each(func(p netcomponents.NetPlayerData) {
		pos, ok := store.Position(p.ID)
		if !ok {
			return
		}
		c := remoteColor
		look := p.Look
		switch {
		case p.Dead || p.Health <= 0:
			c = deadColor
		case p.ID == v.Local:
			c = localColor
			look = v.Look
		}

		pw, ph := v.Player.Width, v.Player.Height
		drawRect(screen, off, pos.X-pw/2, pos.Y-ph/2, pw, ph, c)

		eye := pos.Vec().Add(gamemath.Up.Mul(v.Player.EyeOffset))
		drawLine(screen, off, eye, eye.Add(look.Forward().Mul(aimLength)), color.White, 1)

		label := p.Nickname
		at := pos.Vec().Add(off)
		text.Draw(screen, label, small, int(at.X())-len(label)*3, int(at.Y()-ph/2)-4, color.White)
	})

	for _, ev := range effects {
		from, to := mgl64.Vec2{ev.FromX, ev.FromY}, mgl64.Vec2{ev.ToX, ev.ToY}
		switch ev.Ability {
		case netconfig.AbilityLaser:
			drawLine(screen, off, from, to, laserColor, 2)
		case netconfig.AbilityGrapple, netconfig.AbilityBreak:
			drawLine(screen, off, from, to, hookColor, 1)
		}
	}
}

func drawRect(screen *ebiten.Image, off mgl64.Vec2, x, y, w, h float64, c color.Color) {
	vector.DrawFilledRect(screen, float32(x+off.X()), float32(y+off.Y()), float32(w), float32(h), c, false)
}

func drawLine(screen *ebiten.Image, off, from, to mgl64.Vec2, c color.Color, width float32) {
	a, b := from.Add(off), to.Add(off)
	vector.StrokeLine(screen, float32(a.X()), float32(a.Y()), float32(b.X()), float32(b.Y()), width, c, true)
}
