package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/config"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/server"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		log.Fatalf("Notifications: service exited with error: %v", err)
	}
}
