package lobby

import "arena/internal/contract"

// Msg is anything the Lobby actor accepts on its inbox. All lobby, game
// lobby, and game state is mutated only by the loop draining that inbox, so
// handlers never race with each other or with a game's tick.
type Msg interface{ isLobbyMsg() }

// Login registers a new session on a connection.
type Login struct {
	Conn     Conn
	Username string
}

// Disconnect reports that a player's connection dropped. Conn identifies the
// connection so a stale disconnect cannot purge a newer session under the
// same username.
type Disconnect struct {
	Username string
	Conn     Conn
}

type LeaveLobby struct{ Username string }

type CreateGame struct {
	Username string
	Data     contract.CreateGameData
}

type JoinGame struct {
	Username string
	Data     contract.JoinGameData
}

type LeaveGameLobby struct{ Username string }

type ChangeAvatar struct {
	Username string
	Data     contract.ChangeAvatarData
}

type SwitchTeam struct {
	Username string
	Data     contract.SwitchTeamData
}

type SelectCreep struct {
	Username string
	Data     contract.SelectCreepData
}

type StartGame struct{ Username string }

type SendChat struct {
	Username string
	Data     contract.SendChatData
}

type ClickTarget struct {
	Username string
	Data     contract.ClickTargetData
}

type Shutdown struct{}

// GetView replies with a read-only summary; used by the HTTP API and tests.
type GetView struct{ Reply chan View }

type View struct {
	Lobbies    []contract.LobbySummary
	NumPlayers contract.LobbyNumPlayers
	Locations  map[string]Location
	NumGames   int
}

// startCountdownFired is posted by a game lobby's countdown timer. The
// generation counter drops fires from countdowns that no longer matter.
type startCountdownFired struct {
	gameLobbyID string
	gen         int
}

// gameTick and gameBroadcast are posted by a game's timer goroutine, so the
// physics tick and the snapshot fan-out run on the lobby timeline and can
// never interleave with a click handler mid-tick.
type gameTick struct {
	gameID string
	dt     float64
}

type gameBroadcast struct{ gameID string }

func (Login) isLobbyMsg()               {}
func (Disconnect) isLobbyMsg()          {}
func (LeaveLobby) isLobbyMsg()          {}
func (CreateGame) isLobbyMsg()          {}
func (JoinGame) isLobbyMsg()            {}
func (LeaveGameLobby) isLobbyMsg()      {}
func (ChangeAvatar) isLobbyMsg()        {}
func (SwitchTeam) isLobbyMsg()          {}
func (SelectCreep) isLobbyMsg()         {}
func (StartGame) isLobbyMsg()           {}
func (SendChat) isLobbyMsg()            {}
func (ClickTarget) isLobbyMsg()         {}
func (Shutdown) isLobbyMsg()            {}
func (GetView) isLobbyMsg()             {}
func (startCountdownFired) isLobbyMsg() {}
func (gameTick) isLobbyMsg()            {}
func (gameBroadcast) isLobbyMsg()       {}
