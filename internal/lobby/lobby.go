// Package lobby implements the server's session hierarchy: the top-level
// Lobby registry, pre-match GameLobby staging rooms, and running Game
// instances. A single goroutine per Lobby drains the inbox and owns every
// piece of state underneath it; rooms are plain structs mutated only from
// that loop.
package lobby

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"arena/internal/contract"
	"arena/internal/gamemap"
)

const maxUsernameLength = 16

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Config carries the timing knobs. Zero tick rates disable a game's timer
// goroutine so tests can drive ticks through the inbox deterministically.
type Config struct {
	TickRate       float64 // physics ticks per second
	SendRate       float64 // snapshot broadcasts per second
	StartCountdown time.Duration
}

func DefaultConfig() Config {
	return Config{
		TickRate:       30,
		SendRate:       15,
		StartCountdown: 5 * time.Second,
	}
}

type Lobby struct {
	inbox chan Msg
	cfg   Config
	log   *zap.Logger

	players     map[string]*Player
	gameLobbies map[string]*GameLobby
	games       map[string]*Game

	gameLobbyCounter int
	gameCounter      int

	ctx    context.Context
	cancel context.CancelFunc
}

func NewLobby(parent context.Context, log *zap.Logger, cfg Config) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	l := &Lobby{
		inbox:       make(chan Msg, 256),
		cfg:         cfg,
		log:         log,
		players:     make(map[string]*Player),
		gameLobbies: make(map[string]*GameLobby),
		games:       make(map[string]*Game),
		ctx:         ctx,
		cancel:      cancel,
	}
	go l.loop()
	return l
}

func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Login:
				l.loginPlayer(msg.Conn, msg.Username)
			case Disconnect:
				l.handleDisconnect(msg.Username, msg.Conn)
			case LeaveLobby:
				if p := l.lobbyResident(msg.Username); p != nil {
					l.removePlayer(p)
				}
			case CreateGame:
				if p := l.lobbyResident(msg.Username); p != nil {
					l.addGameLobby(p, msg.Data)
				}
			case JoinGame:
				if p := l.lobbyResident(msg.Username); p != nil {
					l.joinGame(p, msg.Data.GameLobbyID)
				}
			case ChangeAvatar:
				if p := l.lobbyResident(msg.Username); p != nil {
					l.changeAvatar(p, msg.Data.Index)
				}
			case LeaveGameLobby:
				if p, gl := l.gameLobbyResident(msg.Username); gl != nil {
					gl.handleLeave(p)
				}
			case SwitchTeam:
				if p, gl := l.gameLobbyResident(msg.Username); gl != nil {
					gl.switchPlayer(p, msg.Data.Team)
				}
			case SelectCreep:
				if p, gl := l.gameLobbyResident(msg.Username); gl != nil {
					gl.selectCreep(p, msg.Data.Index)
				}
			case StartGame:
				if p, gl := l.gameLobbyResident(msg.Username); gl != nil {
					gl.startGame(p)
				}
			case ClickTarget:
				if p, g := l.gameResident(msg.Username); g != nil {
					g.onClickTarget(p, msg.Data)
				}
			case SendChat:
				if p := l.players[msg.Username]; p != nil {
					l.chat(p, msg.Data.Message)
				}
			case startCountdownFired:
				if gl := l.gameLobbies[msg.gameLobbyID]; gl != nil {
					gl.countdownFired(msg.gen)
				}
			case gameTick:
				if g := l.games[msg.gameID]; g != nil {
					g.tick(msg.dt)
				}
			case gameBroadcast:
				if g := l.games[msg.gameID]; g != nil {
					g.broadcastState()
				}
			case GetView:
				msg.Reply <- l.view()
			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

// lobbyResident resolves a username to a player currently in the top-level
// lobby. Events addressed to the wrong room are dropped here, which replaces
// the original's per-transition listener attach/detach with a routing check.
func (l *Lobby) lobbyResident(username string) *Player {
	p := l.players[username]
	if p == nil || p.Location != LocationLobby {
		return nil
	}
	return p
}

func (l *Lobby) gameLobbyResident(username string) (*Player, *GameLobby) {
	p := l.players[username]
	if p == nil || p.Location != LocationGameLobby {
		return nil, nil
	}
	return p, l.gameLobbies[p.LocationID]
}

func (l *Lobby) gameResident(username string) (*Player, *Game) {
	p := l.players[username]
	if p == nil || p.Location != LocationGame {
		return nil, nil
	}
	return p, l.games[p.LocationID]
}

func (l *Lobby) loginPlayer(conn Conn, username string) {
	if len(username) > maxUsernameLength {
		_ = conn.Send(contract.LoginFailed, contract.LoginFailedData{Reason: contract.UsernameTooLong})
		return
	}
	if !usernamePattern.MatchString(username) {
		_ = conn.Send(contract.LoginFailed, contract.LoginFailedData{Reason: contract.UsernameInvalid})
		return
	}
	if _, exists := l.players[username]; exists {
		_ = conn.Send(contract.LoginFailed, contract.LoginFailedData{Reason: contract.UsernameInUse})
		return
	}

	p := &Player{
		Username: username,
		Conn:     conn,
		Location: LocationLobby,
	}
	l.players[username] = p
	l.log.Info("player logged in", zap.String("username", username))
	p.send(contract.ConfirmUsername, username)
	p.send(contract.LobbyUpdate, l.lobbyState(true))
	l.broadcastLobbyState()
}

// addPlayer returns a player to the top-level lobby from a nested room.
func (l *Lobby) addPlayer(p *Player) {
	p.Location = LocationLobby
	p.LocationID = ""
	p.send(contract.LobbyUpdate, l.lobbyState(true))
	l.broadcastLobbyState()
}

// removePlayer drops the session entirely.
func (l *Lobby) removePlayer(p *Player) {
	delete(l.players, p.Username)
	l.log.Info("player leaving lobby", zap.String("username", p.Username))
	p.send(contract.Logout, nil)
	l.broadcastLobbyState()
}

// handleDisconnect routes by the player's current location: the owning room
// ghosts or removes the player first, then the session is purged. A stale
// Conn means the username was re-used by a newer session; leave it alone.
func (l *Lobby) handleDisconnect(username string, conn Conn) {
	p := l.players[username]
	if p == nil || (conn != nil && p.Conn != conn) {
		return
	}
	switch p.Location {
	case LocationLobby:
		l.log.Info("player disconnected from lobby", zap.String("username", username))
		l.removePlayer(p)
	case LocationGameLobby:
		if gl := l.gameLobbies[p.LocationID]; gl != nil {
			gl.handleDisconnect(p)
		}
		l.removePlayer(p)
	case LocationGame:
		if g := l.games[p.LocationID]; g != nil {
			g.handleDisconnect(p)
		}
		l.removePlayer(p)
	default:
		l.log.Error("player disconnected with unknown location", zap.String("username", username))
	}
}

func (l *Lobby) addGameLobby(p *Player, data contract.CreateGameData) {
	m, err := gamemap.Lookup(data.Map)
	if err != nil {
		l.systemChatTo(p, "cannot create game: unknown map")
		return
	}
	if !m.SupportsSetup(data.NumTeams, data.MaxPlayersPerTeam) {
		l.systemChatTo(p, "cannot create game: map does not support that team setup")
		return
	}
	id := strconv.Itoa(l.gameLobbyCounter)
	l.gameLobbyCounter++
	gl := newGameLobby(l, p, id, data, m)
	l.gameLobbies[id] = gl
	l.log.Info("game lobby created",
		zap.String("id", id),
		zap.String("host", p.Username),
		zap.String("map", data.Map))
	l.broadcastLobbyState()
}

func (l *Lobby) removeGameLobby(id string) {
	if _, ok := l.gameLobbies[id]; ok {
		delete(l.gameLobbies, id)
		l.broadcastLobbyState()
	}
}

func (l *Lobby) joinGame(p *Player, gameLobbyID string) {
	gl, ok := l.gameLobbies[gameLobbyID]
	if !ok {
		p.send(contract.JoinFailed, contract.JoinFailedData{Reason: contract.JoinNotExists})
		return
	}
	if gl.isFull() {
		p.send(contract.JoinFailed, contract.JoinFailedData{Reason: contract.JoinGameFull})
		return
	}
	if gl.starting {
		p.send(contract.JoinFailed, contract.JoinFailedData{Reason: contract.JoinGameStarted})
		return
	}
	gl.addPlayer(p)
	l.broadcastLobbyState()
}

// startGame converts a staged lobby into a running game once the countdown
// elapses.
func (l *Lobby) startGame(gl *GameLobby) {
	id := strconv.Itoa(l.gameCounter)
	l.gameCounter++
	g := newGame(l, gl, id)
	l.games[id] = g
	delete(l.gameLobbies, gl.id)
	l.log.Info("game started", zap.String("game", id), zap.String("map", gl.mapName))
	l.broadcastLobbyState()
	g.broadcastState()
	if l.cfg.TickRate > 0 && l.cfg.SendRate > 0 {
		g.startLoops(l.cfg.TickRate, l.cfg.SendRate)
	}
}

// finishGame tears a completed game down and returns survivors to the lobby.
func (l *Lobby) finishGame(g *Game, winner contract.Team) {
	g.broadcast(contract.GameOver, contract.GameOverData{WinningTeam: winner})
	notice := "the match ended in mutual destruction"
	if winner >= 0 {
		notice = fmt.Sprintf("team %d won the match", winner)
	}
	for _, p := range g.players {
		l.systemChatTo(p, notice)
	}
	l.log.Info("game over", zap.String("game", g.id), zap.Int("winningTeam", int(winner)))
	g.stopLoops()
	delete(l.games, g.id)
	for _, p := range g.players {
		if p.Disconnected {
			continue
		}
		p.GameLobbyState = nil
		p.Entity = 0
		l.addPlayer(p)
	}
}

func (l *Lobby) changeAvatar(p *Player, index int) {
	// Cyclic over the palette so clients can step past either end.
	p.AvatarIndex = ((index % contract.NumAvatars) + contract.NumAvatars) % contract.NumAvatars
}

// chat fans a message out to every member of the sender's current room.
func (l *Lobby) chat(sender *Player, message string) {
	data := contract.ReceiveChatData{Username: sender.Username, Message: message}
	switch sender.Location {
	case LocationLobby:
		for _, p := range l.players {
			if p.Location == LocationLobby {
				p.send(contract.ReceiveChat, data)
			}
		}
	case LocationGameLobby:
		if gl := l.gameLobbies[sender.LocationID]; gl != nil {
			for _, p := range gl.players {
				p.send(contract.ReceiveChat, data)
			}
		}
	case LocationGame:
		if g := l.games[sender.LocationID]; g != nil {
			for _, p := range g.players {
				p.send(contract.ReceiveChat, data)
			}
		}
	}
}

func (l *Lobby) systemChatTo(p *Player, message string) {
	p.send(contract.ReceiveChat, contract.ReceiveChatData{Message: message, IsSystem: true})
}

func (l *Lobby) numPlayers() contract.LobbyNumPlayers {
	var n contract.LobbyNumPlayers
	for _, p := range l.players {
		switch p.Location {
		case LocationLobby:
			n.Lobby++
		case LocationGameLobby:
			n.GameLobby++
		case LocationGame:
			n.Game++
		}
	}
	return n
}

func (l *Lobby) lobbySummaries() []contract.LobbySummary {
	ids := make([]string, 0, len(l.gameLobbies))
	for id := range l.gameLobbies {
		ids = append(ids, id)
	}
	// Ids are decimal counters; sort numerically so listings are stable.
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
	summaries := make([]contract.LobbySummary, 0, len(ids))
	for _, id := range ids {
		gl := l.gameLobbies[id]
		names := make([]string, 0, len(gl.players))
		for _, p := range gl.players {
			names = append(names, p.Username)
		}
		summaries = append(summaries, contract.LobbySummary{
			ID:          gl.id,
			NumPlayers:  len(gl.players),
			MaxPlayers:  gl.numTeams * gl.maxPlayersPerTeam,
			PlayerNames: names,
			Title:       gl.title,
		})
	}
	return summaries
}

func (l *Lobby) lobbyState(arriving bool) contract.LobbyUpdateData {
	return contract.LobbyUpdateData{
		Lobbies:    l.lobbySummaries(),
		NumPlayers: l.numPlayers(),
		Arriving:   arriving,
	}
}

func (l *Lobby) broadcastLobbyState() {
	state := l.lobbyState(false)
	for _, p := range l.players {
		if p.Location == LocationLobby {
			p.send(contract.LobbyUpdate, state)
		}
	}
}

func (l *Lobby) view() View {
	locations := make(map[string]Location, len(l.players))
	for username, p := range l.players {
		locations[username] = p.Location
	}
	return View{
		Lobbies:    l.lobbySummaries(),
		NumPlayers: l.numPlayers(),
		Locations:  locations,
		NumGames:   len(l.games),
	}
}

func (l *Lobby) shutdown() {
	for _, g := range l.games {
		g.stopLoops()
	}
	for _, p := range l.players {
		if p.Conn != nil {
			p.Conn.Close()
		}
	}
	clear(l.players)
	clear(l.gameLobbies)
	clear(l.games)
	l.cancel()
}
