package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

var ErrNotConnected = errors.New("network: not connected")

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoinedGame:
		return "joined"
	case StateError:
		return "error"
	}
	return "disconnected"
}

const eventBufferSize = 256

// Client manages a WebSocket connection to the game server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu deadlock.RWMutex

	state      ClientState
	lastError  error
	playerID   netconfig.PlayerID
	serverName string
	tickRate   int
	course     string
	conn       *websocket.Conn

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins
	eventCh    chan messages.Event

	log zerolog.Logger
}

func NewClient() *Client {
	return &Client{
		state:      StateDisconnected,
		snapshotCh: make(chan esync.WorldSnapshot, 1),
		eventCh:    make(chan messages.Event, eventBufferSize),
		log:        log.With().Str("component", "client").Logger(),
	}
}

// Connect dials the server in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, playerName string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		c.log.Info().Str("address", address).Msg("connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		err := c.SendMessage(messages.JoinRequest{Version: version, PlayerName: playerName})
		if err != nil {
			c.setError(fmt.Errorf("send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		c.log.Info().
			Uint32("player", uint32(msg.PlayerID)).
			Str("server", msg.ServerName).
			Int("tickRate", msg.TickRate).
			Msg("join accepted")
		c.mu.Lock()
		c.playerID = msg.PlayerID
		c.serverName = msg.ServerName
		c.tickRate = msg.TickRate
		c.course = msg.Course
		c.state = StateJoinedGame
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		c.log.Warn().Str("reason", msg.Reason).Msg("join rejected")
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	forwardEvent[messages.CountdownEvent](c)
	forwardEvent[messages.MatchStartedEvent](c)
	forwardEvent[messages.SpawnPlacedEvent](c)
	forwardEvent[messages.AbilityEvent](c)
	forwardEvent[messages.BlockBrokenEvent](c)
	forwardEvent[messages.PlayerDiedEvent](c)
	forwardEvent[messages.PickupSpawnedEvent](c)
	forwardEvent[messages.PickupTakenEvent](c)
	forwardEvent[messages.TimeOutEvent](c)
	forwardEvent[messages.MatchEndedEvent](c)
	forwardEvent[messages.CourseResetEvent](c)

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		c.log.Info().Err(err).Msg("disconnected")
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		c.log.Error().Err(err).Msg("transport error")
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

// forwardEvent routes one broadcast type into the client's event channel.
func forwardEvent[T messages.Event](c *Client) {
	router.On(func(_ *router.NetworkClient, evt T) {
		c.pushEvent(evt)
	})
}

func (c *Client) pushEvent(evt messages.Event) {
	select {
	case c.eventCh <- evt:
	default:
		c.log.Warn().Uint64("seq", evt.Header().Seq).Msg("event buffer full, dropping")
	}
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) PlayerID() netconfig.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

func (c *Client) ServerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverName
}

func (c *Client) Course() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.course
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// LatestSnapshot returns the most recent WorldSnapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *esync.WorldSnapshot {
	select {
	case snap := <-c.snapshotCh:
		return &snap
	default:
		return nil
	}
}

// DrainEvents returns all pending broadcasts, non-blocking.
func (c *Client) DrainEvents() []messages.Event {
	return drainChan(c.eventCh)
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

// SendInput sends one committed input frame.
func (c *Client) SendInput(frame netinput.Frame) error {
	return c.SendMessage(messages.NewPlayerInput(frame))
}

// SendReady signals that the local player is ready to start.
func (c *Client) SendReady() error {
	return c.SendMessage(messages.ReadyRequest{})
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
