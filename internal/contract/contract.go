// Package contract defines the wire protocol shared with game clients:
// event names, payload shapes, and the fixed avatar/creep palettes.
package contract

// Team is an index into a map's team details.
type Team int

const NumAvatars = 9

var AvatarNames = []string{
	"cyclops",
	"demon",
	"dragon",
	"fish",
	"ghost",
	"golem",
	"skeleton",
	"sun",
	"tree",
}

// Creep is an index into the creep palette a player picks from in a game
// lobby.
type Creep int

const NumCreeps = 3

var CreepNames = []string{
	"brawler",
	"lancer",
	"scout",
}

// Client -> server events.
const (
	Login          = "login"
	CreateGame     = "createGame"
	JoinGame       = "joinGame"
	LeaveLobby     = "leaveLobby"
	LeaveGameLobby = "leaveGameLobby"
	ChangeAvatar   = "changeAvatar"
	SwitchTeam     = "switchTeam"
	SelectCreep    = "selectCreep"
	StartGame      = "startGame"
	SendChat       = "sendChat"
	ClickTarget    = "clickTarget"
)

// Server -> client events.
const (
	ConfirmUsername  = "confirmUsername"
	LoginFailed      = "loginFailed"
	Logout           = "logout"
	LobbyUpdate      = "lobbyUpdate"
	JoinFailed       = "joinFailed"
	GameLobbyUpdate  = "gameLobbyUpdate"
	SwitchTeamFailed = "switchTeamFailed"
	StartingGame     = "startingGame"
	GameUpdate       = "gameUpdate"
	GameOver         = "gameOver"
	ReceiveChat      = "receiveChat"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type LoginData struct {
	Username string `json:"username"`
}

type LoginFailedReason string

const (
	UsernameInUse   LoginFailedReason = "UsernameInUse"
	UsernameTooLong LoginFailedReason = "UsernameTooLong"
	UsernameInvalid LoginFailedReason = "UsernameInvalid"
)

type LoginFailedData struct {
	Reason LoginFailedReason `json:"reason"`
}

type CreateGameData struct {
	Map               string `json:"map"`
	NumTeams          int    `json:"numTeams"`
	MaxPlayersPerTeam int    `json:"maxPlayersPerTeam"`
	Title             string `json:"title"`
}

type JoinGameData struct {
	GameLobbyID string `json:"gameLobbyId"`
}

type JoinFailedReason string

const (
	JoinNotExists   JoinFailedReason = "NotExists"
	JoinGameFull    JoinFailedReason = "GameFull"
	JoinGameStarted JoinFailedReason = "GameStarted"
)

type JoinFailedData struct {
	Reason JoinFailedReason `json:"reason"`
}

type ChangeAvatarData struct {
	Index int `json:"index"`
}

type SwitchTeamData struct {
	Team Team `json:"team"`
}

type SwitchTeamFailedReason string

const TeamFull SwitchTeamFailedReason = "TeamFull"

type SwitchTeamFailedData struct {
	Reason SwitchTeamFailedReason `json:"reason"`
}

type SelectCreepData struct {
	Index Creep `json:"index"`
}

type StartingGameData struct {
	// Seconds until the match begins.
	Duration float64 `json:"duration"`
}

type SendChatData struct {
	Message string `json:"message"`
}

type ReceiveChatData struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	IsSystem bool   `json:"isSystem"`
}

type ClickTargetData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type LobbySummary struct {
	ID          string   `json:"id"`
	NumPlayers  int      `json:"numPlayers"`
	MaxPlayers  int      `json:"maxPlayers"`
	PlayerNames []string `json:"playerNames"`
	Title       string   `json:"title"`
}

type LobbyNumPlayers struct {
	Lobby     int `json:"lobby"`
	GameLobby int `json:"gameLobby"`
	Game      int `json:"game"`
}

type LobbyUpdateData struct {
	Lobbies    []LobbySummary  `json:"lobbies"`
	NumPlayers LobbyNumPlayers `json:"numPlayers"`
	Arriving   bool            `json:"arriving"`
}

type GameLobbyPlayer struct {
	AvatarIndex int   `json:"avatarIndex"`
	Team        Team  `json:"team"`
	Creep       Creep `json:"creep"`
}

type GameLobbyUpdateData struct {
	Title             string                     `json:"title"`
	Map               string                     `json:"map"`
	NumTeams          int                        `json:"numTeams"`
	MaxPlayersPerTeam int                        `json:"maxPlayersPerTeam"`
	Players           map[string]GameLobbyPlayer `json:"players"`
	Host              string                     `json:"host"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CreepState struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Position     Position `json:"position"`
	BodyRotation float64  `json:"bodyRotation"`
	HeadRotation float64  `json:"headRotation"`
	Team         Team     `json:"team"`
	Health       float64  `json:"health"`
	MaxHealth    float64  `json:"maxHealth"`
}

type TowerState struct {
	Position Position `json:"position"`
	Rotation float64  `json:"rotation"`
	Team     Team     `json:"team"`
	Health   float64  `json:"health"`
}

type ProjectileState struct {
	Position Position `json:"position"`
	Rotation float64  `json:"rotation"`
	Team     Team     `json:"team"`
}

type GameUpdateData struct {
	Towers      []TowerState      `json:"towers"`
	Minis       []CreepState      `json:"minis"`
	Creeps      []CreepState      `json:"creeps"`
	Projectiles []ProjectileState `json:"projectiles"`
	Walls       []Position        `json:"walls"`
}

type GameOverData struct {
	WinningTeam Team `json:"winningTeam"`
}
