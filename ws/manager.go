package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/drawroom/drawroom-server/game"
	"github.com/drawroom/drawroom-server/protocol"
)

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type ClientList map[string]*Client

type EventHandler func(evt protocol.Event, c *Client) error

// Manager routes inbound events to the matching room or directory operation
// and owns the client registry. Authorization failures and unknown types are
// silently dropped; only join misses get a notice back.
type Manager struct {
	clients   ClientList
	handlers  map[string]EventHandler
	directory *game.Directory
	logger    zerolog.Logger
	sync.RWMutex
}

func NewManager(directory *game.Directory, logger zerolog.Logger) *Manager {
	m := &Manager{
		clients:   make(ClientList),
		handlers:  make(map[string]EventHandler),
		directory: directory,
		logger:    logger.With().Str("component", "ws-manager").Logger(),
	}

	m.setupEventHandlers()

	return m
}

func (m *Manager) setupEventHandlers() {
	m.handlers[protocol.EventCreateRoom] = CreateRoomHandler
	m.handlers[protocol.EventJoinRoom] = JoinRoomHandler
	m.handlers[protocol.EventStartRound] = StartRoundHandler
	m.handlers[protocol.EventDraw] = DrawHandler
	m.handlers[protocol.EventClear] = ClearHandler
	m.handlers[protocol.EventGuess] = GuessHandler
	m.handlers[protocol.EventGetPublicRooms] = GetPublicRoomsHandler
}

func (m *Manager) routeEvent(evt protocol.Event, c *Client) error {
	handler, ok := m.handlers[evt.Type]

	if !ok {
		m.logger.Debug().Str("event", evt.Type).Msg("no handler for event type")
		return nil
	}

	return handler(evt, c)
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.clients[client.id] = client
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.clients[client.id]; ok {
		client.connection.Close()
		delete(m.clients, client.id)
	}
}

// ClientCount reports the number of connected clients.
func (m *Manager) ClientCount() int {
	m.RLock()
	defer m.RUnlock()

	return len(m.clients)
}

// Websocket connection handler.
func (m *Manager) ServeWS(c *gin.Context) {
	conn, err := websocketUpgrader.Upgrade(c.Writer, c.Request, nil)

	if err != nil {
		m.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(conn, m)
	m.addClient(client)
	client.logger.Debug().Msg("client connected")

	ctx, cancel := context.WithCancel(c.Request.Context())

	defer func() {
		cancel()
		m.dropClient(client)

		err := client.connection.WriteMessage(websocket.CloseMessage, nil)

		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			client.logger.Debug().Err(err).Msg("error sending close message")
		}
	}()

	go client.readMessages(ctx)
	go client.writeMessages(ctx)

	err = <-client.Err()

	client.logger.Debug().Err(err).Msg("client disconnected")
}

// dropClient treats a closed socket as an implicit leave: the client exits
// its room (which may end the round or empty the room) before the socket
// bookkeeping is discarded.
func (m *Manager) dropClient(client *Client) {
	client.markClosed()

	if room := client.Room(); room != nil {
		room.Leave(client)
		m.directory.RemoveIfEmpty(room)
		client.SetRoom(nil)
	}

	m.removeClient(client)
}
