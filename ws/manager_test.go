package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/drawroom/drawroom-server/game"
	"github.com/drawroom/drawroom-server/protocol"
)

func newTestManager() *Manager {
	return NewManager(game.NewDirectory(300*time.Second, zerolog.Nop()), zerolog.Nop())
}

func newTestClient(m *Manager) *Client {
	c := NewClient(nil, m)
	m.addClient(c)

	return c
}

func mustEvent(t *testing.T, evtType string, payload any) protocol.Event {
	t.Helper()

	evt, err := protocol.NewEvent(evtType, payload)
	require.NoError(t, err)

	return evt
}

func drainEgress(c *Client) []protocol.Event {
	var events []protocol.Event

	for {
		select {
		case evt := <-c.egress:
			events = append(events, evt)
		default:
			return events
		}
	}
}

func findEvent(events []protocol.Event, evtType string) (protocol.Event, bool) {
	for _, evt := range events {
		if evt.Type == evtType {
			return evt, true
		}
	}

	return protocol.Event{}, false
}

func decodePayload[T any](t *testing.T, evt protocol.Event) T {
	t.Helper()

	var payload T
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))

	return payload
}

func TestRouteEvent(t *testing.T) {
	t.Run("unknown event types are dropped without reply", func(t *testing.T) {
		m := newTestManager()
		c := newTestClient(m)

		err := m.routeEvent(protocol.Event{Type: "teleport"}, c)

		require.NoError(t, err)
		require.Empty(t, drainEgress(c))
	})

	t.Run("malformed payloads are reported to the caller only", func(t *testing.T) {
		m := newTestManager()
		c := newTestClient(m)

		err := m.routeEvent(protocol.Event{Type: protocol.EventCreateRoom, Payload: json.RawMessage(`{`)}, c)

		require.Error(t, err)
		require.Empty(t, drainEgress(c))
	})
}

func TestCreateRoomHandler(t *testing.T) {
	t.Run("creates, joins and acknowledges", func(t *testing.T) {
		m := newTestManager()
		c := newTestClient(m)

		evt := mustEvent(t, protocol.EventCreateRoom, protocol.PayloadCreateRoom{
			RoomName:   "Sketchers",
			Difficulty: game.DifficultyEasy,
			IsPrivate:  true,
			Lang:       "de",
		})

		require.NoError(t, m.routeEvent(evt, c))

		room := c.Room()
		require.NotNil(t, room)
		require.Equal(t, "Player1", c.Name())
		require.True(t, room.IsPrivate())
		require.Len(t, room.JoinCode(), 5)

		events := drainEgress(c)

		created, ok := findEvent(events, protocol.EventRoomCreated)
		require.True(t, ok)

		ack := decodePayload[protocol.PayloadRoomCreated](t, created)
		require.Equal(t, room.ID(), ack.RoomID)
		require.Equal(t, room.JoinCode(), ack.Code)

		_, ok = findEvent(events, protocol.EventLobby)
		require.True(t, ok)
	})

	t.Run("ignores caller-supplied codes", func(t *testing.T) {
		m := newTestManager()
		c := newTestClient(m)

		evt := mustEvent(t, protocol.EventCreateRoom, protocol.PayloadCreateRoom{
			IsPrivate: true,
			Code:      "hack1",
		})

		require.NoError(t, m.routeEvent(evt, c))
		require.NotEqual(t, "hack1", c.Room().JoinCode())
	})
}

func TestJoinRoomHandler(t *testing.T) {
	t.Run("joins a public room by id", func(t *testing.T) {
		m := newTestManager()
		host := newTestClient(m)
		guest := newTestClient(m)

		room := m.directory.CreateRoom("", game.DifficultyEasy, false)
		room.Join(host, "en")
		host.SetRoom(room)

		evt := mustEvent(t, protocol.EventJoinRoom, protocol.PayloadJoinRoom{RoomID: room.ID()})
		require.NoError(t, m.routeEvent(evt, guest))

		require.Equal(t, room, guest.Room())
		require.Equal(t, "Player2", guest.Name())
		require.Equal(t, 2, room.MemberCount())
	})

	t.Run("joins a private room by code regardless of case", func(t *testing.T) {
		m := newTestManager()
		host := newTestClient(m)
		guest := newTestClient(m)

		createEvt := mustEvent(t, protocol.EventCreateRoom, protocol.PayloadCreateRoom{IsPrivate: true})
		require.NoError(t, m.routeEvent(createEvt, host))

		code := host.Room().JoinCode()

		joinEvt := mustEvent(t, protocol.EventJoinRoom, protocol.PayloadJoinRoom{Code: code})
		require.NoError(t, m.routeEvent(joinEvt, guest))

		require.Equal(t, host.Room(), guest.Room())
	})

	t.Run("replies with a notice when nothing matches", func(t *testing.T) {
		m := newTestManager()
		c := newTestClient(m)

		evt := mustEvent(t, protocol.EventJoinRoom, protocol.PayloadJoinRoom{RoomID: "gone"})
		require.NoError(t, m.routeEvent(evt, c))

		require.Nil(t, c.Room())

		events := drainEgress(c)

		notice, ok := findEvent(events, protocol.EventMessage)
		require.True(t, ok)
		require.Equal(t, "room not found", decodePayload[protocol.PayloadMessage](t, notice).Text)
	})

	t.Run("leaves the previous room before joining the next", func(t *testing.T) {
		m := newTestManager()
		c := newTestClient(m)

		createEvt := mustEvent(t, protocol.EventCreateRoom, protocol.PayloadCreateRoom{})
		require.NoError(t, m.routeEvent(createEvt, c))

		first := c.Room()

		target := m.directory.CreateRoom("", game.DifficultyEasy, false)
		keeper := newTestClient(m)
		target.Join(keeper, "en")
		keeper.SetRoom(target)

		joinEvt := mustEvent(t, protocol.EventJoinRoom, protocol.PayloadJoinRoom{RoomID: target.ID()})
		require.NoError(t, m.routeEvent(joinEvt, c))

		require.Equal(t, target, c.Room())

		// the first room emptied out and must be gone
		_, ok := m.directory.FindByID(first.ID())
		require.False(t, ok)
	})
}

func TestGetPublicRoomsHandler(t *testing.T) {
	m := newTestManager()
	c := newTestClient(m)

	room := m.directory.CreateRoom("Open", game.DifficultyHard, false)
	room.Join(newTestClient(m), "en")
	m.directory.CreateRoom("Hidden", game.DifficultyHard, true)

	require.NoError(t, m.routeEvent(mustEvent(t, protocol.EventGetPublicRooms, nil), c))

	events := drainEgress(c)

	listing, ok := findEvent(events, protocol.EventPublicRooms)
	require.True(t, ok)

	payload := decodePayload[protocol.PayloadPublicRooms](t, listing)
	require.Len(t, payload.Rooms, 1)
	require.Equal(t, room.ID(), payload.Rooms[0].ID)
	require.Equal(t, 1, payload.Rooms[0].PlayersCount)
}

// Full round-trip of the round lifecycle through the router, as a client
// would drive it.
func TestRoundFlowThroughRouter(t *testing.T) {
	m := newTestManager()
	drawer := newTestClient(m)
	guesser := newTestClient(m)

	createEvt := mustEvent(t, protocol.EventCreateRoom, protocol.PayloadCreateRoom{
		Difficulty: game.DifficultyEasy,
	})
	require.NoError(t, m.routeEvent(createEvt, drawer))

	room := drawer.Room()

	joinEvt := mustEvent(t, protocol.EventJoinRoom, protocol.PayloadJoinRoom{RoomID: room.ID()})
	require.NoError(t, m.routeEvent(joinEvt, guesser))

	require.NoError(t, m.routeEvent(protocol.Event{Type: protocol.EventStartRound}, drawer))
	require.True(t, room.RoundActive())

	drawEvt := mustEvent(t, protocol.EventDraw, protocol.PayloadDraw{Data: json.RawMessage(`[1,2,3]`)})
	require.NoError(t, m.routeEvent(drawEvt, drawer))

	// the word is one of the easy bucket; guessing the whole bucket wins
	for _, word := range game.Words(game.DifficultyEasy) {
		guessEvt := mustEvent(t, protocol.EventGuess, protocol.PayloadGuess{Text: word})
		require.NoError(t, m.routeEvent(guessEvt, guesser))
	}

	require.False(t, room.RoundActive())

	events := drainEgress(guesser)

	start, ok := findEvent(events, protocol.EventRoundStart)
	require.True(t, ok)
	require.Equal(t, "Player1", decodePayload[protocol.PayloadRoundStart](t, start).Drawer)

	drawing, ok := findEvent(events, protocol.EventDrawing)
	require.True(t, ok)
	require.JSONEq(t, `[1,2,3]`, string(decodePayload[protocol.PayloadDraw](t, drawing).Data))

	end, ok := findEvent(events, protocol.EventRoundEnd)
	require.True(t, ok)
	require.Equal(t, "Player2", *decodePayload[protocol.PayloadRoundEnd](t, end).Winner)
}
