package ws

import (
	"encoding/json"

	"github.com/drawroom/drawroom-server/game"
	"github.com/drawroom/drawroom-server/protocol"
)

const defaultLang = "en"

// CreateRoomHandler allocates a room through the directory and puts the
// requesting connection into it. Any caller-supplied code is ignored; the
// directory is the sole authority on join codes.
func CreateRoomHandler(evt protocol.Event, c *Client) error {
	var payload protocol.PayloadCreateRoom

	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return err
	}

	leaveCurrentRoom(c)

	room := c.manager.directory.CreateRoom(payload.RoomName, payload.Difficulty, payload.IsPrivate)
	enterRoom(c, room, payload.Lang)

	reply, err := protocol.NewEvent(protocol.EventRoomCreated, protocol.PayloadRoomCreated{
		RoomID: room.ID(),
		Code:   room.JoinCode(),
	})

	if err != nil {
		return err
	}

	c.Send(reply)

	return nil
}

// JoinRoomHandler resolves a room by join code (private) or by id and joins
// it. A miss gets a notice back; the connection stays unassigned.
func JoinRoomHandler(evt protocol.Event, c *Client) error {
	var payload protocol.PayloadJoinRoom

	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return err
	}

	var (
		room *game.Room
		ok   bool
	)

	switch {
	case payload.Code != "":
		room, ok = c.manager.directory.FindByCode(payload.Code)
	case payload.RoomID != "":
		room, ok = c.manager.directory.FindByID(payload.RoomID)
	}

	if !ok {
		notice, err := protocol.NewEvent(protocol.EventMessage, protocol.PayloadMessage{
			Text: "room not found",
		})

		if err != nil {
			return err
		}

		c.Send(notice)

		return nil
	}

	leaveCurrentRoom(c)
	enterRoom(c, room, payload.Lang)

	return nil
}

func StartRoundHandler(_ protocol.Event, c *Client) error {
	room := c.Room()

	if room == nil {
		return nil
	}

	room.StartRound(c)

	return nil
}

func DrawHandler(evt protocol.Event, c *Client) error {
	var payload protocol.PayloadDraw

	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return err
	}

	room := c.Room()

	if room == nil {
		return nil
	}

	room.Stroke(c, payload.Data)

	return nil
}

func ClearHandler(_ protocol.Event, c *Client) error {
	room := c.Room()

	if room == nil {
		return nil
	}

	room.Clear(c)

	return nil
}

func GuessHandler(evt protocol.Event, c *Client) error {
	var payload protocol.PayloadGuess

	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return err
	}

	room := c.Room()

	if room == nil {
		return nil
	}

	room.Guess(c, payload.Text)

	return nil
}

func GetPublicRoomsHandler(_ protocol.Event, c *Client) error {
	reply, err := protocol.NewEvent(protocol.EventPublicRooms, protocol.PayloadPublicRooms{
		Rooms: c.manager.directory.ListPublic(),
	})

	if err != nil {
		return err
	}

	c.Send(reply)

	return nil
}

func enterRoom(c *Client, room *game.Room, lang string) {
	if lang == "" {
		lang = defaultLang
	}

	name := room.Join(c, lang)
	c.SetRoom(room)
	c.SetName(name)
}

// leaveCurrentRoom enforces the one-room-per-connection invariant: creating
// or joining a room while already in one leaves the old room first.
func leaveCurrentRoom(c *Client) {
	room := c.Room()

	if room == nil {
		return
	}

	room.Leave(c)
	c.manager.directory.RemoveIfEmpty(room)
	c.SetRoom(nil)
	c.SetName("")
}
