package game

import (
	"fmt"

	"github.com/drawroom/drawroom-server/protocol"
)

// Connection is the engine's view of a socket. The room never owns the
// connection's lifecycle; it only sends to it and compares identity.
type Connection interface {
	ID() string
	Send(evt protocol.Event)
	IsOpen() bool
}

// Player ties a connection to its in-room identity. Lang is an opaque tag
// forwarded to clients, never interpreted here.
type Player struct {
	conn Connection
	name string
	lang string
}

func (p *Player) Name() string {
	return p.name
}

// nextPlayerName probes for the smallest unused "PlayerN" suffix.
func nextPlayerName(players []*Player) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("Player%d", n)
		taken := false

		for _, p := range players {
			if p.name == name {
				taken = true
				break
			}
		}

		if !taken {
			return name
		}
	}
}
