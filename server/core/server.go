package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/SpeedyZooba/blocky-climb/shared/leveldata"
	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/replica"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"github.com/yohamta/donburi"
	"golang.org/x/time/rate"
)

const inboxSize = 256

// clientConn is the transport-side view of one connection.
type clientConn struct {
	client  *router.NetworkClient
	id      netconfig.PlayerID
	joining bool
	joined  bool
	limiter *rate.Limiter
}

// Server owns the session and bridges necs transport callbacks into it.
// Callbacks run on transport goroutines and only enqueue commands; the game
// loop goroutine drains them before each tick.
type Server struct {
	cfg       *config.Config
	session   *Session
	loop      *GameLoop
	transport *transports.WsServerTransport
	courseRef string

	inbox chan func() // input frames; dropped when full

	// Join, leave and ready are never dropped
	controlMu deadlock.Mutex
	control   []func()

	mu      deadlock.RWMutex
	clients map[*router.NetworkClient]*clientConn
	nextID  netconfig.PlayerID

	log zerolog.Logger
}

// NewServer creates a server for course. A nil course runs an empty world in
// which matches never start.
func NewServer(cfg *config.Config, course *leveldata.Course) *Server {
	s := &Server{
		cfg:       cfg,
		courseRef: cfg.Server.Course,
		inbox:     make(chan func(), inboxSize),
		clients:   make(map[*router.NetworkClient]*clientConn),
		log:       log.With().Str("component", "server").Logger(),
	}

	physicsCourse := course
	if physicsCourse == nil {
		physicsCourse = &leveldata.Course{Name: "empty", MapWidth: 16, MapHeight: 16}
	}
	world := NewResolvWorld(physicsCourse, cfg.Player, cfg.Physics, cfg.Server.TickRate)

	// Set up the world for esync before any entity is created
	ecsWorld := donburi.NewWorld()
	srvsync.UseEsync(ecsWorld)

	s.session = NewSession(cfg, course, world,
		WithWorld(ecsWorld),
		WithEntitySync(syncEntity),
		WithSinks(s),
	)
	s.loop = NewGameLoop(s, cfg.Server.TickRate)

	s.setupRouterCallbacks()
	return s
}

// syncEntity marks an entity for replication with the components it carries.
func syncEntity(world donburi.World, entity *donburi.Entity) error {
	entry := world.Entry(*entity)
	var err error
	switch {
	case entry.HasComponent(netcomponents.NetPlayer):
		err = srvsync.NetworkSync(world, entity,
			srvsync.WithInterp(netcomponents.NetPosition, netcomponents.NetVelocity),
			netcomponents.NetPlayer,
		)
	case entry.HasComponent(netcomponents.NetMatch):
		err = srvsync.NetworkSync(world, entity, netcomponents.NetMatch)
	case entry.HasComponent(netcomponents.NetBlock):
		err = srvsync.NetworkSync(world, entity, netcomponents.NetBlock)
	case entry.HasComponent(netcomponents.NetPickup):
		err = srvsync.NetworkSync(world, entity, netcomponents.NetPickup, netcomponents.NetPosition)
	default:
		return errors.New("entity has no replicated component")
	}
	if err != nil {
		return fmt.Errorf("network sync: %w", err)
	}
	return nil
}

// Start runs the game loop and blocks serving the WebSocket transport.
func (s *Server) Start() error {
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(s.cfg.Server.Port, "", nil)
	return s.transport.Start()
}

// Stop gracefully shuts down the game loop
func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		s.onConnect(client)
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.onDisconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, req messages.JoinRequest) {
		s.onJoin(client, req)
	})

	router.On(func(client *router.NetworkClient, _ messages.ReadyRequest) {
		s.onReady(client)
	})

	router.On(func(client *router.NetworkClient, input messages.PlayerInput) {
		s.onPlayerInput(client, input)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		s.log.Error().Err(err).Str("client", client.Id()).Msg("client error")
	})
}

func (s *Server) enqueueInput(cmd func()) {
	select {
	case s.inbox <- cmd:
	default:
		s.log.Warn().Msg("inbox full, dropping input")
	}
}

func (s *Server) enqueueControl(cmd func()) {
	s.controlMu.Lock()
	s.control = append(s.control, cmd)
	s.controlMu.Unlock()
}

func (s *Server) takeControl() []func() {
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	cmds := s.control
	s.control = nil
	return cmds
}

func (s *Server) conn(client *router.NetworkClient) (*clientConn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[client]
	return c, ok
}

func (s *Server) onConnect(client *router.NetworkClient) {
	// Two ticks of input as burst, refilled at twice the tick rate
	tick := s.cfg.Server.TickRate
	s.mu.Lock()
	s.clients[client] = &clientConn{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(2*tick), 2),
	}
	s.mu.Unlock()

	s.log.Info().Str("client", client.Id()).Msg("Client connected")
}

func (s *Server) onDisconnect(client *router.NetworkClient, err error) {
	s.mu.Lock()
	c, ok := s.clients[client]
	delete(s.clients, client)
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Str("client", client.Id()).Msg("Client disconnected")
	} else {
		s.log.Info().Str("client", client.Id()).Msg("Client disconnected")
	}

	if ok && (c.joined || c.joining) {
		id := c.id
		s.enqueueControl(func() { s.session.Leave(id) })
	}
}

func (s *Server) onJoin(client *router.NetworkClient, req messages.JoinRequest) {
	if s.cfg.Server.Version != "" && req.Version != s.cfg.Server.Version {
		s.reply(client, messages.JoinRejected{
			Reason: fmt.Sprintf("version mismatch: server requires %s", s.cfg.Server.Version),
		})
		return
	}

	s.mu.Lock()
	c, ok := s.clients[client]
	if !ok || c.joined || c.joining {
		s.mu.Unlock()
		return
	}
	s.nextID++
	c.id = s.nextID
	c.joining = true
	s.mu.Unlock()

	id := c.id
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		name = fmt.Sprintf("Player %d", id)
	}

	s.enqueueControl(func() {
		err := s.session.Join(id, name)

		s.mu.Lock()
		c.joining = false
		c.joined = err == nil
		s.mu.Unlock()

		if errors.Is(err, replica.ErrCapacity) {
			s.reply(client, messages.JoinRejected{Reason: "server full"})
			return
		}
		if err != nil {
			s.log.Error().Err(err).Uint32("player", uint32(id)).Msg("join failed")
			s.reply(client, messages.JoinRejected{Reason: "join failed"})
			return
		}
		s.reply(client, messages.JoinAccepted{
			PlayerID:   id,
			ServerName: s.cfg.Server.Name,
			TickRate:   s.cfg.Server.TickRate,
			Course:     s.courseRef,
		})
	})
}

func (s *Server) onReady(client *router.NetworkClient) {
	c, ok := s.conn(client)
	if !ok {
		return
	}
	s.mu.RLock()
	joined, id := c.joined, c.id
	s.mu.RUnlock()
	if !joined {
		return
	}
	s.enqueueControl(func() { s.session.SetReady(id) })
}

func (s *Server) onPlayerInput(client *router.NetworkClient, input messages.PlayerInput) {
	c, ok := s.conn(client)
	if !ok {
		return
	}
	s.mu.RLock()
	joined, id := c.joined, c.id
	s.mu.RUnlock()
	if !joined {
		return
	}
	if !c.limiter.Allow() {
		s.log.Debug().Uint32("player", uint32(id)).Msg("input rate exceeded, dropping frame")
		return
	}

	frame := input.Frame()
	s.enqueueInput(func() { s.session.PushInput(id, frame) })
}

func (s *Server) reply(client *router.NetworkClient, msg any) {
	if err := client.SendMessage(msg); err != nil {
		s.log.Error().Err(err).Str("client", client.Id()).Msg("failed to send message")
	}
}

// HandleEvent fans a broadcast out to every joined client.
func (s *Server) HandleEvent(ev messages.Event) {
	s.mu.RLock()
	targets := make([]*router.NetworkClient, 0, len(s.clients))
	for client, c := range s.clients {
		if c.joined {
			targets = append(targets, client)
		}
	}
	s.mu.RUnlock()

	for _, client := range targets {
		s.reply(client, ev)
	}
}

// ProcessCommands runs the commands queued before this tick, control before
// input, then one simulation step. Input left over from a player who just
// left is refused by the session.
func (s *Server) ProcessCommands() {
	for _, cmd := range s.takeControl() {
		cmd()
	}
	for n := len(s.inbox); n > 0; n-- {
		cmd := <-s.inbox
		cmd()
	}
	s.session.Tick()
}

// Session returns the authoritative session
func (s *Server) Session() *Session {
	return s.session
}

// PlayerCount returns the number of joined players
func (s *Server) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.clients {
		if c.joined {
			n++
		}
	}
	return n
}
