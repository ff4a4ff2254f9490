package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/drawroom/drawroom-server/game"
	"github.com/drawroom/drawroom-server/protocol"
)

var (
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
)

const (
	maxMessageSize = 64 * 1024
	egressBuffer   = 256

	// Inbound budget per connection. Stroke streams are chatty, so the
	// limit is generous; anything beyond it is dropped, not an error.
	inboundRate  = rate.Limit(60)
	inboundBurst = 120
)

// Client is the per-socket context: the websocket connection, the room the
// socket currently belongs to (if any) and the display name assigned to it.
type Client struct {
	id         string
	connection *websocket.Conn
	manager    *Manager
	egress     chan protocol.Event
	limiter    *rate.Limiter
	err        chan error
	logger     zerolog.Logger

	mu     sync.Mutex
	room   *game.Room
	name   string
	closed bool
}

func NewClient(conn *websocket.Conn, manager *Manager) *Client {
	id := uuid.NewString()

	return &Client{
		id:         id,
		connection: conn,
		manager:    manager,
		egress:     make(chan protocol.Event, egressBuffer),
		limiter:    rate.NewLimiter(inboundRate, inboundBurst),
		err:        make(chan error, 2),
		logger:     manager.logger.With().Str("client", id).Logger(),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues an event for delivery. It never blocks: a closed client or a
// full egress buffer means the event is dropped, so one slow peer cannot
// stall fan-out to the rest of its room.
func (c *Client) Send(evt protocol.Event) {
	if !c.IsOpen() {
		return
	}

	select {
	case c.egress <- evt:
	default:
		c.logger.Warn().Str("event", evt.Type).Msg("egress full, dropping event")
	}
}

func (c *Client) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.closed
}

func (c *Client) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
}

func (c *Client) Room() *game.Room {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.room
}

func (c *Client) SetRoom(room *game.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.room = room
}

func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.name
}

func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.name = name
}

// Reads incoming messages from the client's websocket connection and routes
// them. Unparsable or over-budget messages are dropped without reply.
func (c *Client) readMessages(ctx context.Context) {
	c.connection.SetReadLimit(maxMessageSize)

	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.handleError(err)
		return
	}

	c.connection.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, payload, err := c.connection.ReadMessage()

			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.logger.Warn().Err(err).Msg("unexpected error reading message")
				}
				c.handleError(err)
				return
			}

			if !c.limiter.Allow() {
				c.logger.Debug().Msg("rate limit exceeded, dropping message")
				continue
			}

			var evt protocol.Event

			if err := json.Unmarshal(payload, &evt); err != nil {
				c.logger.Debug().Err(err).Msg("dropping malformed message")
				continue
			}

			if err := c.manager.routeEvent(evt, c); err != nil {
				c.logger.Debug().Err(err).Str("event", evt.Type).Msg("event dropped")
			}
		}
	}
}

// Writes messages pushed to the client's egress channel.
func (c *Client) writeMessages(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)

	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-c.egress:
			data, err := json.Marshal(evt)

			if err != nil {
				c.handleError(err)
				return
			}

			if err := c.connection.WriteMessage(websocket.TextMessage, data); err != nil {
				c.handleError(err)
				return
			}
		case <-ticker.C:
			if err := c.connection.WriteMessage(websocket.PingMessage, []byte("")); err != nil {
				c.handleError(err)
				return
			}
		}
	}
}

// Sets a new read deadline when a pong is received for a ping message.
func (c *Client) pongHandler(string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}

// handleError pushes to the client's error channel. ServeWS waits on it to
// know when a pump died so it can tear the connection down.
func (c *Client) handleError(e error) {
	c.err <- e
}

func (c *Client) Err() chan error {
	return c.err
}
