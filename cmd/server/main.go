package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"arena/internal/httpapi"
	"arena/internal/lobby"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()
	l := lobby.NewLobby(ctx, logger, lobby.DefaultConfig())

	handler := httpapi.SetupRoutes(l, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	logger.Info("listening", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
