package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"arena/internal/lobby"
	"arena/internal/ws"
)

func SetupRoutes(l *lobby.Lobby, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/lobbies", ListLobbies(l))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(l, log))
	return r
}
