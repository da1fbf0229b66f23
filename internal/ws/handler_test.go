package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"arena/internal/contract"
	"arena/internal/lobby"
)

func dialTestServer(t *testing.T, l *lobby.Lobby) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(Handler(l, zap.NewNop()))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	payload, err := json.Marshal(contract.Envelope{Event: event, Data: data})
	if err != nil {
		t.Fatalf("marshal %s: %v", event, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

// waitForWireEvent reads frames until one carries the named event, skipping
// interleaved broadcasts.
func waitForWireEvent(t *testing.T, conn *websocket.Conn, name string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("waiting for %q: %v", name, err)
		}
		var env wireEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("bad frame while waiting for %q: %v", name, err)
		}
		if env.Event == name {
			return
		}
	}
}

// waitForSessions polls the lobby until exactly the given usernames are
// registered.
func waitForSessions(t *testing.T, l *lobby.Lobby, want ...string) {
	t.Helper()
	sort.Strings(want)
	deadline := time.After(2 * time.Second)
	for {
		reply := make(chan lobby.View, 1)
		l.Inbox() <- lobby.GetView{Reply: reply}
		var view lobby.View
		select {
		case view = <-reply:
		case <-deadline:
			t.Fatalf("lobby never replied")
		}
		got := make([]string, 0, len(view.Locations))
		for username := range view.Locations {
			got = append(got, username)
		}
		sort.Strings(got)
		if len(got) == len(want) {
			match := true
			for i := range got {
				if got[i] != want[i] {
					match = false
					break
				}
			}
			if match {
				return
			}
		}
		select {
		case <-deadline:
			t.Fatalf("want sessions %v, still have %v", want, got)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHandler_RebindingLoginReleasesFirstSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	l := lobby.NewLobby(ctx, zap.NewNop(), lobby.DefaultConfig())

	conn := dialTestServer(t, l)
	sendEvent(t, conn, contract.Login, contract.LoginData{Username: "alice"})
	waitForWireEvent(t, conn, contract.ConfirmUsername)

	// Logging in again on the same connection hands the session to the new
	// name; the old one must not linger in the registry.
	sendEvent(t, conn, contract.Login, contract.LoginData{Username: "bob"})
	waitForWireEvent(t, conn, contract.ConfirmUsername)
	waitForSessions(t, l, "bob")

	_ = conn.Close(websocket.StatusNormalClosure, "")
	waitForSessions(t, l)
}

func TestHandler_LoginRetryAfterFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	l := lobby.NewLobby(ctx, zap.NewNop(), lobby.DefaultConfig())

	conn := dialTestServer(t, l)
	sendEvent(t, conn, contract.Login, contract.LoginData{Username: "not a name!"})
	waitForWireEvent(t, conn, contract.LoginFailed)

	sendEvent(t, conn, contract.Login, contract.LoginData{Username: "carol"})
	waitForWireEvent(t, conn, contract.ConfirmUsername)
	waitForSessions(t, l, "carol")
}
