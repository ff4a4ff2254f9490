package protocol

import "encoding/json"

// Event is the wire envelope for every message in both directions. Payload
// stays raw until a handler knows what to decode it into.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> server message types.
const (
	EventCreateRoom     = "createRoom"
	EventJoinRoom       = "joinRoom"
	EventStartRound     = "startRound"
	EventDraw           = "draw"
	EventClear          = "clear"
	EventGuess          = "guess"
	EventGetPublicRooms = "getPublicRooms"
)

// Server -> client message types. Strokes arrive as "draw" and are relayed
// as "drawing"; both ends of this implementation use these two labels.
const (
	EventRoomCreated = "roomCreated"
	EventLobby       = "lobby"
	EventPublicRooms = "publicRooms"
	EventRoundStart  = "roundStart"
	EventRoundEnd    = "roundEnd"
	EventDrawing     = "drawing"
	EventMessage     = "message"
)

type PayloadCreateRoom struct {
	RoomName   string `json:"roomName"`
	Difficulty string `json:"difficulty"`
	IsPrivate  bool   `json:"isPrivate"`
	Code       string `json:"code"`
	Lang       string `json:"lang"`
}

type PayloadJoinRoom struct {
	Code   string `json:"code"`
	RoomID string `json:"roomId"`
	Lang   string `json:"lang"`
}

type PayloadDraw struct {
	Data json.RawMessage `json:"data"`
}

type PayloadGuess struct {
	Text string `json:"text"`
}

type PayloadRoomCreated struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code,omitempty"`
}

type PayloadLobby struct {
	RoomID      string   `json:"roomId"`
	RoomName    string   `json:"roomName"`
	IsPrivate   bool     `json:"isPrivate"`
	Code        string   `json:"code,omitempty"`
	Difficulty  string   `json:"difficulty"`
	Players     []string `json:"players"`
	RoundActive bool     `json:"roundActive"`
	Drawer      string   `json:"drawer,omitempty"`
}

// PublicRoom is one entry of the public-room listing, shared by the
// getPublicRooms socket message and the REST listing.
type PublicRoom struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PlayersCount int    `json:"playersCount"`
	Difficulty   string `json:"difficulty"`
}

type PayloadPublicRooms struct {
	Rooms []PublicRoom `json:"rooms"`
}

type PayloadRoundStart struct {
	Drawer   string `json:"drawer"`
	Word     string `json:"word"`
	Duration int    `json:"duration"`
}

type PayloadRoundEnd struct {
	Winner *string `json:"winner"`
}

// PayloadGuessEcho is the chat-visible broadcast of a submitted guess.
type PayloadGuessEcho struct {
	Player string `json:"player"`
	Guess  string `json:"guess"`
}

type PayloadMessage struct {
	Text string `json:"text"`
}

func NewEvent(evtType string, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: evtType}, nil
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return Event{}, err
	}

	return Event{Type: evtType, Payload: b}, nil
}
