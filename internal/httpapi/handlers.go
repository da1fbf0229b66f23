package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"arena/internal/contract"
	"arena/internal/lobby"
)

// ListLobbies serves the same open-game listing the lobbyUpdate event
// carries, for clients that want to poll before connecting.
func ListLobbies(l *lobby.Lobby) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan lobby.View, 1)
		l.Inbox() <- lobby.GetView{Reply: reply}

		var view lobby.View
		select {
		case view = <-reply:
		case <-time.After(3 * time.Second):
			http.Error(w, "lobby unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Lobbies    []contract.LobbySummary  `json:"lobbies"`
			NumPlayers contract.LobbyNumPlayers `json:"numPlayers"`
		}{Lobbies: view.Lobbies, NumPlayers: view.NumPlayers})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
