package lobby

import (
	"time"

	"go.uber.org/zap"

	"arena/internal/contract"
	"arena/internal/gamemap"
)

// GameLobby is the pre-match staging room. Membership and team composition
// are mutable while assembling; once the start countdown is running they are
// frozen, and disconnecting players are ghosted instead of removed so team
// counts survive into the match.
type GameLobby struct {
	lobby *Lobby
	id    string

	title             string
	mapName           string
	mapDetails        *gamemap.MapDetails
	numTeams          int
	maxPlayersPerTeam int

	// players keeps insertion order; the host is always first.
	players  []*Player
	starting bool
	startGen int
}

func newGameLobby(l *Lobby, host *Player, id string, data contract.CreateGameData, m *gamemap.MapDetails) *GameLobby {
	gl := &GameLobby{
		lobby:             l,
		id:                id,
		title:             data.Title,
		mapName:           data.Map,
		mapDetails:        m,
		numTeams:          data.NumTeams,
		maxPlayersPerTeam: data.MaxPlayersPerTeam,
	}
	gl.addPlayer(host)
	return gl
}

func (gl *GameLobby) host() *Player {
	if len(gl.players) == 0 {
		return nil
	}
	return gl.players[0]
}

func (gl *GameLobby) isFull() bool {
	return len(gl.players) >= gl.numTeams*gl.maxPlayersPerTeam
}

func (gl *GameLobby) teamCounts() []int {
	counts := make([]int, gl.numTeams)
	for _, p := range gl.players {
		if p.GameLobbyState != nil {
			counts[p.GameLobbyState.Team]++
		}
	}
	return counts
}

// addPlayer seats the player on the team with the fewest members, lowest
// team index winning ties. A completely full lobby makes this a no-op; the
// caller screens for that before delegating.
func (gl *GameLobby) addPlayer(p *Player) {
	counts := gl.teamCounts()
	team := -1
	for i, c := range counts {
		if c < gl.maxPlayersPerTeam && (team < 0 || c < counts[team]) {
			team = i
		}
	}
	if team < 0 {
		return
	}
	p.Location = LocationGameLobby
	p.LocationID = gl.id
	p.GameLobbyState = &GameLobbyState{Team: contract.Team(team)}
	gl.players = append(gl.players, p)
	gl.broadcastState()
}

func (gl *GameLobby) switchPlayer(p *Player, team contract.Team) {
	if gl.starting || p.GameLobbyState == nil {
		return
	}
	if int(team) < 0 || int(team) >= gl.numTeams || p.GameLobbyState.Team == team {
		return
	}
	if gl.teamCounts()[team] >= gl.maxPlayersPerTeam {
		p.send(contract.SwitchTeamFailed, contract.SwitchTeamFailedData{Reason: contract.TeamFull})
		return
	}
	p.GameLobbyState.Team = team
	gl.broadcastState()
}

func (gl *GameLobby) selectCreep(p *Player, creep contract.Creep) {
	if gl.starting || p.GameLobbyState == nil {
		return
	}
	if int(creep) < 0 || int(creep) >= contract.NumCreeps {
		return
	}
	p.GameLobbyState.Creep = creep
	gl.broadcastState()
}

// startGame begins the countdown. Only the host may start, only while
// assembling, and only with every team holding the same number of players;
// otherwise it is a no-op that can be retried.
func (gl *GameLobby) startGame(p *Player) {
	if gl.starting || p != gl.host() {
		return
	}
	counts := gl.teamCounts()
	for _, c := range counts {
		if c != counts[0] || c == 0 {
			return
		}
	}
	gl.starting = true
	gl.startGen++
	gen := gl.startGen
	duration := gl.lobby.cfg.StartCountdown
	gl.broadcast(contract.StartingGame, contract.StartingGameData{Duration: duration.Seconds()})
	gl.lobby.log.Info("game lobby starting",
		zap.String("id", gl.id),
		zap.Duration("countdown", duration))
	inbox := gl.lobby.inbox
	id := gl.id
	time.AfterFunc(duration, func() {
		inbox <- startCountdownFired{gameLobbyID: id, gen: gen}
	})
}

// countdownFired runs on the lobby loop when the start timer elapses. A
// stale generation means the lobby was torn down and recreated under the
// same id between arm and fire.
func (gl *GameLobby) countdownFired(gen int) {
	if !gl.starting || gen != gl.startGen {
		return
	}
	gl.lobby.startGame(gl)
}

// handleLeave is the voluntary counterpart of handleDisconnect. Leaving is
// ignored once the lobby is starting: membership is frozen for the match.
func (gl *GameLobby) handleLeave(p *Player) {
	if gl.starting {
		return
	}
	if p == gl.host() {
		gl.removeHost()
		return
	}
	gl.removePlayer(p, true)
}

// handleDisconnect applies the starting-state-dependent policy: full removal
// while assembling (with lobby teardown if the host left), ghosting once the
// start sequence is underway.
func (gl *GameLobby) handleDisconnect(p *Player) {
	if gl.starting {
		gl.ghostPlayer(p)
		return
	}
	gl.lobby.log.Info("player disconnected from game lobby",
		zap.String("username", p.Username),
		zap.String("id", gl.id))
	if p == gl.host() {
		gl.removeHost()
		return
	}
	gl.removePlayer(p, true)
}

// removeHost tears the whole lobby down, returning every member to the
// parent lobby.
func (gl *GameLobby) removeHost() {
	for i := len(gl.players) - 1; i >= 0; i-- {
		gl.removePlayer(gl.players[i], false)
	}
	gl.lobby.removeGameLobby(gl.id)
}

func (gl *GameLobby) removePlayer(p *Player, broadcast bool) {
	for i, cur := range gl.players {
		if cur == p {
			gl.players = append(gl.players[:i], gl.players[i+1:]...)
			p.GameLobbyState = nil
			gl.lobby.addPlayer(p)
			if broadcast {
				gl.broadcastState()
			}
			return
		}
	}
}

// ghostPlayer freezes a disconnected player's seat. The roster entry becomes
// a connection-less copy so team accounting is untouched while the original
// session record is purged by the caller.
func (gl *GameLobby) ghostPlayer(p *Player) {
	for i, cur := range gl.players {
		if cur == p {
			ghost := *p
			ghost.Conn = nil
			ghost.Disconnected = true
			gl.players[i] = &ghost
			gl.lobby.log.Info("player ghosted in starting game lobby",
				zap.String("username", p.Username),
				zap.String("id", gl.id))
			return
		}
	}
}

func (gl *GameLobby) getState() contract.GameLobbyUpdateData {
	state := contract.GameLobbyUpdateData{
		Title:             gl.title,
		Map:               gl.mapName,
		NumTeams:          gl.numTeams,
		MaxPlayersPerTeam: gl.maxPlayersPerTeam,
		Players:           make(map[string]contract.GameLobbyPlayer, len(gl.players)),
	}
	if h := gl.host(); h != nil {
		state.Host = h.Username
	}
	for _, p := range gl.players {
		if p.GameLobbyState != nil {
			state.Players[p.Username] = contract.GameLobbyPlayer{
				AvatarIndex: p.AvatarIndex,
				Team:        p.GameLobbyState.Team,
				Creep:       p.GameLobbyState.Creep,
			}
		}
	}
	return state
}

func (gl *GameLobby) broadcast(event string, data any) {
	for _, p := range gl.players {
		p.send(event, data)
	}
}

func (gl *GameLobby) broadcastState() {
	gl.broadcast(contract.GameLobbyUpdate, gl.getState())
}
