package lobby

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"arena/internal/contract"
)

type sentEvent struct {
	name string
	data any
}

// fakeConn records events the server sends to one player. Send never
// blocks so a forgotten receive cannot wedge the lobby loop.
type fakeConn struct {
	events chan sentEvent
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan sentEvent, 128)}
}

func (c *fakeConn) Send(event string, data any) error {
	select {
	case c.events <- sentEvent{name: event, data: data}:
	default:
	}
	return nil
}

func (c *fakeConn) Close() {}

// waitForEvent returns the next event with the given name, skipping
// unrelated broadcasts, and fails the test after the timeout.
func waitForEvent(t *testing.T, c *fakeConn, name string, within time.Duration) sentEvent {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case ev := <-c.events:
			if ev.name == name {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", name)
			return sentEvent{} // unreachable
		}
	}
}

// expectNoEvent asserts the named event does not arrive within the window.
func expectNoEvent(t *testing.T, c *fakeConn, name string, within time.Duration) {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case ev := <-c.events:
			if ev.name == name {
				t.Fatalf("expected no %q, but got: %+v", name, ev.data)
			}
		case <-deadline:
			return
		}
	}
}

// latestRoster drains queued events and returns the most recent game lobby
// roster the player has seen.
func latestRoster(t *testing.T, c *fakeConn) contract.GameLobbyUpdateData {
	t.Helper()
	var state contract.GameLobbyUpdateData
	found := false
	for {
		select {
		case ev := <-c.events:
			if ev.name == contract.GameLobbyUpdate {
				state = ev.data.(contract.GameLobbyUpdateData)
				found = true
			}
		default:
			if !found {
				t.Fatalf("no gameLobbyUpdate received")
			}
			return state
		}
	}
}

func teamCountsOf(state contract.GameLobbyUpdateData, numTeams int) []int {
	counts := make([]int, numTeams)
	for _, p := range state.Players {
		counts[p.Team]++
	}
	return counts
}

func newTestLobby(t *testing.T, cfg Config) *Lobby {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewLobby(ctx, zap.NewNop(), cfg)
}

func login(t *testing.T, l *Lobby, username string) *fakeConn {
	t.Helper()
	conn := newFakeConn()
	l.Inbox() <- Login{Conn: conn, Username: username}
	waitForEvent(t, conn, contract.ConfirmUsername, time.Second)
	return conn
}

func view(t *testing.T, l *Lobby) View {
	t.Helper()
	reply := make(chan View, 1)
	l.Inbox() <- GetView{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func TestLogin_RejectsBadUsernames(t *testing.T) {
	l := newTestLobby(t, Config{StartCountdown: time.Hour})
	login(t, l, "taken")

	cases := []struct {
		name     string
		username string
		reason   contract.LoginFailedReason
	}{
		{"non-alphanumeric", "bad name!", contract.UsernameInvalid},
		{"empty", "", contract.UsernameInvalid},
		{"too long", strings.Repeat("a", 17), contract.UsernameTooLong},
		{"already in use", "taken", contract.UsernameInUse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn := newFakeConn()
			l.Inbox() <- Login{Conn: conn, Username: tc.username}
			ev := waitForEvent(t, conn, contract.LoginFailed, time.Second)
			got := ev.data.(contract.LoginFailedData)
			if got.Reason != tc.reason {
				t.Fatalf("want reason %q, got %q", tc.reason, got.Reason)
			}
		})
	}
}

func TestLogin_ConfirmsAndBroadcasts(t *testing.T) {
	l := newTestLobby(t, Config{StartCountdown: time.Hour})

	alice := login(t, l, "alice")
	ev := waitForEvent(t, alice, contract.LobbyUpdate, time.Second)
	state := ev.data.(contract.LobbyUpdateData)
	if !state.Arriving {
		t.Fatalf("first lobbyUpdate should be the arriving snapshot")
	}

	login(t, l, "bob")
	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-alice.events:
			if ev.name != contract.LobbyUpdate {
				continue
			}
			state = ev.data.(contract.LobbyUpdateData)
			if state.NumPlayers.Lobby != 2 {
				continue
			}
			if state.Arriving {
				t.Fatalf("broadcast after another login should not be arriving")
			}
			return
		case <-deadline:
			t.Fatalf("never saw a lobbyUpdate counting both players")
		}
	}
}

func TestJoinGame_FailureReasons(t *testing.T) {
	l := newTestLobby(t, Config{StartCountdown: time.Hour})

	host := login(t, l, "host")
	l.Inbox() <- CreateGame{Username: "host", Data: contract.CreateGameData{
		Map: "test", NumTeams: 2, MaxPlayersPerTeam: 1, Title: "duel",
	}}
	waitForEvent(t, host, contract.GameLobbyUpdate, time.Second)

	t.Run("not exists", func(t *testing.T) {
		ghost := login(t, l, "wanderer")
		l.Inbox() <- JoinGame{Username: "wanderer", Data: contract.JoinGameData{GameLobbyID: "999"}}
		ev := waitForEvent(t, ghost, contract.JoinFailed, time.Second)
		if got := ev.data.(contract.JoinFailedData).Reason; got != contract.JoinNotExists {
			t.Fatalf("want NotExists, got %q", got)
		}
	})

	alice := login(t, l, "alice")
	l.Inbox() <- JoinGame{Username: "alice", Data: contract.JoinGameData{GameLobbyID: "0"}}
	waitForEvent(t, alice, contract.GameLobbyUpdate, time.Second)

	t.Run("full", func(t *testing.T) {
		bob := login(t, l, "bob")
		l.Inbox() <- JoinGame{Username: "bob", Data: contract.JoinGameData{GameLobbyID: "0"}}
		ev := waitForEvent(t, bob, contract.JoinFailed, time.Second)
		if got := ev.data.(contract.JoinFailedData).Reason; got != contract.JoinGameFull {
			t.Fatalf("want GameFull, got %q", got)
		}
	})

	t.Run("started", func(t *testing.T) {
		// A starting lobby that still has open seats.
		dana := login(t, l, "dana")
		l.Inbox() <- CreateGame{Username: "dana", Data: contract.CreateGameData{
			Map: "test", NumTeams: 2, MaxPlayersPerTeam: 2, Title: "late",
		}}
		waitForEvent(t, dana, contract.GameLobbyUpdate, time.Second)
		erin := login(t, l, "erin")
		l.Inbox() <- JoinGame{Username: "erin", Data: contract.JoinGameData{GameLobbyID: "1"}}
		waitForEvent(t, erin, contract.GameLobbyUpdate, time.Second)
		l.Inbox() <- StartGame{Username: "dana"}
		waitForEvent(t, dana, contract.StartingGame, time.Second)

		carol := login(t, l, "carol")
		l.Inbox() <- JoinGame{Username: "carol", Data: contract.JoinGameData{GameLobbyID: "1"}}
		ev := waitForEvent(t, carol, contract.JoinFailed, time.Second)
		if got := ev.data.(contract.JoinFailedData).Reason; got != contract.JoinGameStarted {
			t.Fatalf("want GameStarted, got %q", got)
		}
	})

	t.Run("full wins over started", func(t *testing.T) {
		// The duel lobby is both full and starting; capacity is checked
		// first.
		l.Inbox() <- StartGame{Username: "host"}
		waitForEvent(t, host, contract.StartingGame, time.Second)

		frank := login(t, l, "frank")
		l.Inbox() <- JoinGame{Username: "frank", Data: contract.JoinGameData{GameLobbyID: "0"}}
		ev := waitForEvent(t, frank, contract.JoinFailed, time.Second)
		if got := ev.data.(contract.JoinFailedData).Reason; got != contract.JoinGameFull {
			t.Fatalf("want GameFull, got %q", got)
		}
	})
}

func TestChat_ScopedToRoom(t *testing.T) {
	l := newTestLobby(t, Config{StartCountdown: time.Hour})

	alice := login(t, l, "alice")
	bob := login(t, l, "bob")
	carol := login(t, l, "carol")
	l.Inbox() <- CreateGame{Username: "carol", Data: contract.CreateGameData{
		Map: "test", NumTeams: 2, MaxPlayersPerTeam: 2, Title: "elsewhere",
	}}
	waitForEvent(t, carol, contract.GameLobbyUpdate, time.Second)

	l.Inbox() <- SendChat{Username: "alice", Data: contract.SendChatData{Message: "hi"}}

	for _, c := range []*fakeConn{alice, bob} {
		ev := waitForEvent(t, c, contract.ReceiveChat, time.Second)
		msg := ev.data.(contract.ReceiveChatData)
		if msg.Username != "alice" || msg.Message != "hi" || msg.IsSystem {
			t.Fatalf("unexpected chat payload: %+v", msg)
		}
	}
	expectNoEvent(t, carol, contract.ReceiveChat, 100*time.Millisecond)
}

func TestChangeAvatar_WrapsOverPalette(t *testing.T) {
	l := newTestLobby(t, Config{StartCountdown: time.Hour})

	host := login(t, l, "host")
	l.Inbox() <- ChangeAvatar{Username: "host", Data: contract.ChangeAvatarData{Index: contract.NumAvatars + 1}}
	l.Inbox() <- CreateGame{Username: "host", Data: contract.CreateGameData{
		Map: "test", NumTeams: 2, MaxPlayersPerTeam: 2, Title: "t",
	}}
	ev := waitForEvent(t, host, contract.GameLobbyUpdate, time.Second)
	state := ev.data.(contract.GameLobbyUpdateData)
	if got := state.Players["host"].AvatarIndex; got != 1 {
		t.Fatalf("want avatar index 1 after wrap, got %d", got)
	}
}

func TestLeaveLobby_LogsOut(t *testing.T) {
	l := newTestLobby(t, Config{StartCountdown: time.Hour})

	alice := login(t, l, "alice")
	l.Inbox() <- LeaveLobby{Username: "alice"}
	waitForEvent(t, alice, contract.Logout, time.Second)

	v := view(t, l)
	if _, ok := v.Locations["alice"]; ok {
		t.Fatalf("player should be purged after leaving")
	}
}

func TestCreateGame_RejectsUnknownMap(t *testing.T) {
	l := newTestLobby(t, Config{StartCountdown: time.Hour})

	host := login(t, l, "host")
	l.Inbox() <- CreateGame{Username: "host", Data: contract.CreateGameData{
		Map: "nope", NumTeams: 2, MaxPlayersPerTeam: 2, Title: "t",
	}}
	ev := waitForEvent(t, host, contract.ReceiveChat, time.Second)
	if msg := ev.data.(contract.ReceiveChatData); !msg.IsSystem {
		t.Fatalf("expected a system notice, got %+v", msg)
	}
	if len(view(t, l).Lobbies) != 0 {
		t.Fatalf("no game lobby should have been created")
	}
}
