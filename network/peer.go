package network

import (
	"errors"
	"time"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/SpeedyZooba/blocky-climb/shared/presentation"
	"github.com/SpeedyZooba/blocky-climb/shared/replica"
	"github.com/leap-fish/necs/esync"
	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Transport is what a Peer needs from the connection to the authority.
// *Client implements it.
type Transport interface {
	PlayerID() netconfig.PlayerID
	TickRate() int
	LatestSnapshot() *esync.WorldSnapshot
	DrainEvents() []messages.Event
	SendInput(frame netinput.Frame) error
	SendReady() error
}

// Peer is the non-authoritative side of a session. Once per frame it applies
// the newest snapshot, diffs the mirror to drive presentation, releases
// broadcasts the mirror has caught up with, and sends one input frame per
// authority tick.
type Peer struct {
	transport Transport
	mirror    *Mirror
	observer  replica.Observer
	events    EventQueue

	input     *InputAccumulator
	predictor *LookPredictor

	presenter presentation.Presenter
	audio     presentation.Audio
	totals    [netconfig.AbilityCount]time.Duration

	tickRate   int
	nextFlush  time.Time
	lastSecond int

	log zerolog.Logger
}

func NewPeer(cfg *config.Config, t Transport, p presentation.Presenter, a presentation.Audio) *Peer {
	var totals [netconfig.AbilityCount]time.Duration
	for i := range totals {
		totals[i] = cfg.Abilities.Cooldown(netconfig.Ability(i))
	}
	return &Peer{
		transport:  t,
		mirror:     NewMirror(cfg.Server.MaxPlayers),
		input:      NewInputAccumulator(cfg.Input.SmoothingWindow),
		predictor:  NewLookPredictor(cfg.Player.MaxPitch),
		presenter:  p,
		audio:      a,
		totals:     totals,
		tickRate:   cfg.Server.TickRate,
		lastSecond: -1,
		log:        log.With().Str("component", "peer").Logger(),
	}
}

func (p *Peer) Mirror() *Mirror           { return p.mirror }
func (p *Peer) Input() *InputAccumulator  { return p.input }
func (p *Peer) Predictor() *LookPredictor { return p.predictor }
func (p *Peer) Local() netconfig.PlayerID { return p.transport.PlayerID() }
func (p *Peer) Joined() bool              { return p.Local() != netconfig.NoPlayer }

// Look is the local player's orientation to render.
func (p *Peer) Look() gamemath.LookRotation {
	return p.predictor.Predicted(p.input.Pending())
}

// Name resolves a player id against the mirror.
func (p *Peer) Name(id netconfig.PlayerID) string {
	if pl, ok := p.mirror.Store().Get(id); ok {
		return pl.Nickname
	}
	return "someone"
}

// Ready asks the authority to mark the local player ready.
func (p *Peer) Ready() {
	if err := p.transport.SendReady(); err != nil {
		p.log.Error().Err(err).Msg("failed to send ready")
	}
}

// Update runs one client frame.
func (p *Peer) Update(now time.Time) {
	if snap := p.transport.LatestSnapshot(); snap != nil {
		p.mirror.ApplySnapshot(*snap)
		p.Refresh()
	}

	for _, ev := range p.transport.DrainEvents() {
		p.events.Push(ev)
	}
	for _, ev := range p.events.Ready(p.mirror.Tick()) {
		presentation.Apply(ev, p.Name, p.presenter, p.audio)
	}

	p.flush(now)
}

// Refresh diffs the mirror against the previous observation and pushes what
// changed to presentation. Call it once after every applied snapshot.
func (p *Peer) Refresh() {
	store := p.mirror.Store()
	match := store.Match()
	change := p.observer.Observe(store)

	if change.PhaseChanged {
		p.log.Info().Stringer("phase", change.NewPhase).Msg("phase changed")
		p.presenter.SetLobbyText(presentation.LobbyText(change.NewPhase, match.Countdown))
	}
	if match.State == netconfig.MatchEnded && (change.TableChanged || change.StateChanged) {
		p.presenter.SetPlayerTable(presentation.PlayerTable(store.Players()))
	}
	if change.StateChanged && change.NewState != netconfig.MatchGoing {
		p.lastSecond = -1
	}

	local, joined := store.Get(p.Local())
	if joined {
		p.predictor.Confirm(local.LastInputSeq, local.Look)
		p.presenter.SetCooldowns(presentation.Cooldowns(local, p.mirror.Clock(), p.totals))
	}

	if match.State != netconfig.MatchGoing {
		return
	}
	p.presenter.SetLeaderboard(presentation.Leaderboard(store.Players(), p.Local()))

	remaining := match.MatchTimer.Remaining(p.mirror.Clock())
	if opt.IsNone(remaining) {
		return
	}
	seconds := presentation.RemainingSeconds(remaining.Value)
	if seconds == p.lastSecond {
		return
	}
	p.lastSecond = seconds
	view := presentation.Timer(seconds)
	p.presenter.SetTimer(view)
	if view.Alert {
		p.audio.Play(netconfig.SoundTimerAlert)
	}
}

// flush commits and sends one frame per authority tick.
func (p *Peer) flush(now time.Time) {
	if !p.Joined() {
		return
	}
	rate := p.transport.TickRate()
	if rate <= 0 {
		rate = p.tickRate
	}
	interval := time.Second / time.Duration(max(rate, 1))

	if p.nextFlush.IsZero() {
		p.nextFlush = now
	}
	if now.Before(p.nextFlush) {
		return
	}
	p.nextFlush = p.nextFlush.Add(interval)
	if !p.nextFlush.After(now) {
		// fell more than a tick behind; resync rather than burst
		p.nextFlush = now.Add(interval)
	}

	frame := p.input.Flush(now)
	p.predictor.Record(frame)
	if err := p.transport.SendInput(frame); err != nil && !errors.Is(err, ErrNotConnected) {
		p.log.Error().Err(err).Uint32("seq", frame.Sequence).Msg("failed to send input")
	}
}
