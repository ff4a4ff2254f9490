package game

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/drawroom/drawroom-server/protocol"
	"github.com/drawroom/drawroom-server/util"
)

const (
	defaultPublicRoomName  = "Public room"
	defaultPrivateRoomName = "Private room"

	joinCodeLength = 5
)

// Directory is the process-wide registry of active rooms. It is the sole
// authority on room ids and private join codes, and RemoveIfEmpty is the
// only deletion path; rooms never expire on their own.
type Directory struct {
	mu            sync.RWMutex
	rooms         map[string]*Room
	roundDuration time.Duration
	logger        zerolog.Logger
}

func NewDirectory(roundDuration time.Duration, logger zerolog.Logger) *Directory {
	return &Directory{
		rooms:         make(map[string]*Room),
		roundDuration: roundDuration,
		logger:        logger.With().Str("component", "directory").Logger(),
	}
}

// CreateRoom allocates a fresh room and registers it. For private rooms the
// join code is generated here regardless of any caller-supplied value.
func (d *Directory) CreateRoom(name, difficulty string, private bool) *Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	if name == "" {
		name = defaultPublicRoomName

		if private {
			name = defaultPrivateRoomName
		}
	}

	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	var code string

	if private {
		code = d.uniqueCodeLocked()
	}

	room := NewRoom(uuid.NewString(), name, difficulty, private, code, d.roundDuration, d.logger)
	d.rooms[room.id] = room

	d.logger.Info().
		Str("room", room.id).
		Str("difficulty", difficulty).
		Bool("private", private).
		Msg("room created")

	return room
}

// FindByCode matches private rooms only, case-insensitively.
func (d *Directory) FindByCode(code string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	code = strings.ToUpper(strings.TrimSpace(code))

	for _, r := range d.rooms {
		if r.private && r.joinCode == code {
			return r, true
		}
	}

	return nil, false
}

func (d *Directory) FindByID(id string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	room, ok := d.rooms[id]

	return room, ok
}

// ListPublic returns a point-in-time snapshot of the public rooms.
func (d *Directory) ListPublic() []protocol.PublicRoom {
	d.mu.RLock()
	defer d.mu.RUnlock()

	public := lo.Filter(lo.Values(d.rooms), func(r *Room, _ int) bool {
		return !r.private
	})

	return lo.Map(public, func(r *Room, _ int) protocol.PublicRoom {
		return r.Snapshot()
	})
}

// RemoveIfEmpty deletes the room once its member count reaches zero.
// Callers invoke it after every membership change.
func (d *Directory) RemoveIfEmpty(room *Room) {
	if room == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if room.MemberCount() > 0 {
		return
	}

	if _, ok := d.rooms[room.id]; ok {
		delete(d.rooms, room.id)
		d.logger.Info().Str("room", room.id).Msg("empty room removed")
	}
}

// uniqueCodeLocked generates a join code unique among live private rooms.
func (d *Directory) uniqueCodeLocked() string {
	for {
		code := util.GenerateCode(joinCodeLength)
		taken := false

		for _, r := range d.rooms {
			if r.private && r.joinCode == code {
				taken = true
				break
			}
		}

		if !taken {
			return code
		}
	}
}
