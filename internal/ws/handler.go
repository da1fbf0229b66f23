// Package ws bridges websocket connections to the lobby inbox: it decodes
// client envelopes into lobby messages and fans server events back out
// through a buffered per-connection writer.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"arena/internal/contract"
	"arena/internal/lobby"
)

var (
	errSlowClient = errors.New("client send buffer full")
	errClosed     = errors.New("connection closed")
)

// client implements lobby.Conn over a websocket. Send never blocks: a full
// outbox means the client cannot keep up and the connection is dropped, the
// same way a slow snapshot consumer is dropped.
type client struct {
	conn   *websocket.Conn
	outbox chan []byte
	closed chan struct{}
	once   sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:   conn,
		outbox: make(chan []byte, 32),
		closed: make(chan struct{}),
	}
}

func (c *client) Send(event string, data any) error {
	payload, err := json.Marshal(contract.Envelope{Event: event, Data: data})
	if err != nil {
		return err
	}
	select {
	case <-c.closed:
		return errClosed
	default:
	}
	select {
	case c.outbox <- payload:
		return nil
	default:
		c.Close()
		return errSlowClient
	}
}

func (c *client) Close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	})
}

func (c *client) writeLoop(parent context.Context) {
	for {
		select {
		case <-c.closed:
			return
		case payload := <-c.outbox:
			ctx, cancel := context.WithTimeout(parent, 3*time.Second)
			err := c.conn.Write(ctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				c.Close()
				return
			}
		}
	}
}

// wireEnvelope defers payload decoding until the event name is known.
type wireEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func Handler(l *lobby.Lobby, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		c := newClient(conn)
		defer c.Close()
		go c.writeLoop(context.Background())

		// The username this connection last tried to log in as. The lobby
		// owns validation; the reader only tracks which session to address.
		var username string
		defer func() {
			if username != "" {
				l.Inbox() <- lobby.Disconnect{Username: username, Conn: c}
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}

			var env wireEnvelope
			if err := json.Unmarshal(data, &env); err != nil {
				log.Debug("bad envelope", zap.Error(err))
				continue
			}

			if env.Event == contract.Login {
				var d contract.LoginData
				if err := json.Unmarshal(env.Data, &d); err != nil {
					continue
				}
				// One session per connection: rebinding to a new username
				// releases the old session first, otherwise the deferred
				// Disconnect would only ever name the last one. If the
				// previous login failed, the lobby's conn-identity check
				// makes this a no-op.
				if username != "" && username != d.Username {
					l.Inbox() <- lobby.Disconnect{Username: username, Conn: c}
				}
				username = d.Username
				l.Inbox() <- lobby.Login{Conn: c, Username: d.Username}
				continue
			}
			if username == "" {
				continue
			}
			msg, ok := toLobbyMsg(username, env)
			if !ok {
				log.Debug("unknown event", zap.String("event", env.Event))
				continue
			}
			l.Inbox() <- msg
		}
	}
}

func toLobbyMsg(username string, env wireEnvelope) (lobby.Msg, bool) {
	switch env.Event {
	case contract.CreateGame:
		var d contract.CreateGameData
		if json.Unmarshal(env.Data, &d) != nil {
			return nil, false
		}
		return lobby.CreateGame{Username: username, Data: d}, true
	case contract.JoinGame:
		var d contract.JoinGameData
		if json.Unmarshal(env.Data, &d) != nil {
			return nil, false
		}
		return lobby.JoinGame{Username: username, Data: d}, true
	case contract.LeaveLobby:
		return lobby.LeaveLobby{Username: username}, true
	case contract.LeaveGameLobby:
		return lobby.LeaveGameLobby{Username: username}, true
	case contract.ChangeAvatar:
		var d contract.ChangeAvatarData
		if json.Unmarshal(env.Data, &d) != nil {
			return nil, false
		}
		return lobby.ChangeAvatar{Username: username, Data: d}, true
	case contract.SwitchTeam:
		var d contract.SwitchTeamData
		if json.Unmarshal(env.Data, &d) != nil {
			return nil, false
		}
		return lobby.SwitchTeam{Username: username, Data: d}, true
	case contract.SelectCreep:
		var d contract.SelectCreepData
		if json.Unmarshal(env.Data, &d) != nil {
			return nil, false
		}
		return lobby.SelectCreep{Username: username, Data: d}, true
	case contract.StartGame:
		return lobby.StartGame{Username: username}, true
	case contract.SendChat:
		var d contract.SendChatData
		if json.Unmarshal(env.Data, &d) != nil {
			return nil, false
		}
		return lobby.SendChat{Username: username, Data: d}, true
	case contract.ClickTarget:
		var d contract.ClickTargetData
		if json.Unmarshal(env.Data, &d) != nil {
			return nil, false
		}
		return lobby.ClickTarget{Username: username, Data: d}, true
	default:
		return nil, false
	}
}
