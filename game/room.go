package game

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/drawroom/drawroom-server/protocol"
)

// Room is a single game room. All mutable fields are guarded by mu; every
// operation acquires it, including the deadline timer callback, so round
// transitions are totally ordered. Nothing blocks on I/O under the lock:
// Connection.Send is fire-and-forget.
type Room struct {
	id         string
	name       string
	difficulty string
	private    bool
	joinCode   string

	roundDuration time.Duration
	logger        zerolog.Logger

	mu          sync.Mutex
	players     []*Player
	roundActive bool
	drawerIdx   int
	drawer      *Player
	currentWord string
	roundSeq    uint64
	deadline    *time.Timer
}

func NewRoom(id, name, difficulty string, private bool, joinCode string, roundDuration time.Duration, logger zerolog.Logger) *Room {
	return &Room{
		id:            id,
		name:          name,
		difficulty:    difficulty,
		private:       private,
		joinCode:      joinCode,
		roundDuration: roundDuration,
		logger:        logger.With().Str("room", id).Logger(),
	}
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) Name() string {
	return r.name
}

func (r *Room) Difficulty() string {
	return r.difficulty
}

func (r *Room) IsPrivate() bool {
	return r.private
}

// JoinCode returns the room's join code; empty for public rooms.
func (r *Room) JoinCode() string {
	return r.joinCode
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.players)
}

func (r *Room) RoundActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.roundActive
}

// Snapshot returns the room's public-listing entry.
func (r *Room) Snapshot() protocol.PublicRoom {
	r.mu.Lock()
	defer r.mu.Unlock()

	return protocol.PublicRoom{
		ID:           r.id,
		Name:         r.name,
		PlayersCount: len(r.players),
		Difficulty:   r.difficulty,
	}
}

// Join assigns the next unused PlayerN name, appends the player and
// broadcasts the updated lobby state to every member including the joiner.
// Authorization (code matching) is the Directory's job, not the Room's.
func (r *Room) Join(conn Connection, lang string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := nextPlayerName(r.players)
	r.players = append(r.players, &Player{conn: conn, name: name, lang: lang})

	r.logger.Debug().Str("player", name).Msg("player joined")
	r.broadcastLobbyLocked()

	return name
}

// Leave removes the player owning conn. It reports whether the room became
// empty; the caller is expected to follow up with Directory.RemoveIfEmpty.
func (r *Room) Leave(conn Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, p := r.findLocked(conn)

	if p == nil {
		return len(r.players) == 0
	}

	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.logger.Debug().Str("player", p.name).Msg("player left")

	if len(r.players) == 0 {
		return true
	}

	if r.roundActive && r.drawer == p {
		// the drawer walked out mid-round
		r.endRoundLocked(nil)
		return false
	}

	if r.drawerIdx >= len(r.players) {
		r.drawerIdx = 0
	}

	r.broadcastLobbyLocked()

	return false
}

// StartRound is a no-op unless the room is idle, has at least two members
// and conn belongs to the member at the drawer position.
func (r *Room) StartRound(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roundActive || len(r.players) < 2 {
		return
	}

	if r.drawerIdx >= len(r.players) {
		r.drawerIdx = 0
	}

	drawer := r.players[r.drawerIdx]

	if drawer.conn.ID() != conn.ID() {
		return
	}

	r.roundActive = true
	r.drawer = drawer
	r.currentWord = PickWord(r.difficulty)
	r.roundSeq++

	seq := r.roundSeq
	r.deadline = time.AfterFunc(r.roundDuration, func() {
		r.expire(seq)
	})

	r.logger.Debug().Str("drawer", drawer.name).Msg("round started")

	r.broadcastLocked(protocol.EventRoundStart, protocol.PayloadRoundStart{
		Drawer:   drawer.name,
		Word:     r.currentWord,
		Duration: int(r.roundDuration / time.Second),
	})
}

// Guess evaluates a guess from conn. The raw guess is always echoed to the
// room; on a match the round ends first, so by the time the echo is observed
// the room is already idle.
func (r *Room) Guess(conn Connection, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.roundActive {
		return
	}

	_, p := r.findLocked(conn)

	if p == nil {
		return
	}

	if strings.TrimSpace(strings.ToLower(text)) == strings.ToLower(r.currentWord) {
		winner := p.name
		r.logger.Debug().Str("player", winner).Msg("correct guess")
		r.endRoundLocked(&winner)
	}

	r.broadcastLocked(protocol.EventGuess, protocol.PayloadGuessEcho{
		Player: p.name,
		Guess:  text,
	})
}

// Stroke relays an opaque stroke payload. Drawer-only; the server never
// interprets stroke geometry.
func (r *Room) Stroke(conn Connection, data json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isDrawerLocked(conn) {
		return
	}

	r.broadcastLocked(protocol.EventDrawing, protocol.PayloadDraw{Data: data})
}

// Clear relays a canvas clear. Drawer-only.
func (r *Room) Clear(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isDrawerLocked(conn) {
		return
	}

	r.broadcastLocked(protocol.EventClear, nil)
}

func (r *Room) isDrawerLocked(conn Connection) bool {
	return r.roundActive && r.drawer != nil && r.drawer.conn.ID() == conn.ID()
}

// expire is the deadline timer callback. seq pins the round the timer was
// armed for: if the round already ended (and possibly a new one started)
// while this callback waited on the lock, it must do nothing.
func (r *Room) expire(seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.roundActive || r.roundSeq != seq {
		return
	}

	r.logger.Debug().Msg("round deadline reached")
	r.endRoundLocked(nil)
}

// endRoundLocked cancels the deadline, returns the room to idle, broadcasts
// the result and the refreshed lobby, then rotates the drawer position.
// Rotation happens whether or not there was a winner.
func (r *Room) endRoundLocked(winner *string) {
	if r.deadline != nil {
		r.deadline.Stop()
		r.deadline = nil
	}

	r.roundActive = false
	r.currentWord = ""
	r.drawer = nil

	r.broadcastLocked(protocol.EventRoundEnd, protocol.PayloadRoundEnd{Winner: winner})
	r.broadcastLobbyLocked()

	if len(r.players) > 0 {
		r.drawerIdx = (r.drawerIdx + 1) % len(r.players)
	}
}

func (r *Room) findLocked(conn Connection) (int, *Player) {
	for i, p := range r.players {
		if p.conn.ID() == conn.ID() {
			return i, p
		}
	}

	return -1, nil
}

func (r *Room) broadcastLobbyLocked() {
	payload := protocol.PayloadLobby{
		RoomID:     r.id,
		RoomName:   r.name,
		IsPrivate:  r.private,
		Code:       r.joinCode,
		Difficulty: r.difficulty,
		Players: lo.Map(r.players, func(p *Player, _ int) string {
			return p.name
		}),
		RoundActive: r.roundActive,
	}

	if r.roundActive && r.drawer != nil {
		payload.Drawer = r.drawer.name
	}

	r.broadcastLocked(protocol.EventLobby, payload)
}

// broadcastLocked sends to every member whose connection is still open.
// Members with closed connections are skipped, not removed; removal is
// exclusively the leave/disconnect path's job.
func (r *Room) broadcastLocked(evtType string, payload any) {
	evt, err := protocol.NewEvent(evtType, payload)

	if err != nil {
		r.logger.Error().Err(err).Str("event", evtType).Msg("failed to build event")
		return
	}

	for _, p := range r.players {
		if p.conn.IsOpen() {
			p.conn.Send(evt)
		}
	}
}
