package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/vagago/internmatch/internal/app"
	"github.com/vagago/internmatch/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to start application: " + err.Error())
	}

	if err := application.Run(ctx); err != nil {
		logger.Fatal("Application exited with error: " + err.Error())
	}
}
