package lobby

import (
	"arena/internal/contract"
	"arena/internal/sim"
)

// Location tags which room currently owns a player and receives their
// events.
type Location int

const (
	LocationLobby Location = iota
	LocationGameLobby
	LocationGame
)

// Conn delivers events to one player's client. The websocket layer provides
// the real implementation; tests inject channel-backed fakes.
type Conn interface {
	Send(event string, data any) error
	Close()
}

// GameLobbyState is a player's pre-match selections.
type GameLobbyState struct {
	Team  contract.Team
	Creep contract.Creep
}

// Player is one session. The record is owned by whichever room currently
// lists it; a ghosted player keeps the record but loses the connection.
type Player struct {
	Username       string
	Conn           Conn
	AvatarIndex    int
	Location       Location
	LocationID     string
	GameLobbyState *GameLobbyState
	Disconnected   bool
	Entity         sim.EntityID // valid while Location == LocationGame
}

// send delivers an event, silently skipping ghosts. Send failures are the
// transport's problem: the websocket layer closes the connection and a
// Disconnect flows back through the inbox.
func (p *Player) send(event string, data any) {
	if p.Conn != nil {
		_ = p.Conn.Send(event, data)
	}
}
