package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	"bookshelf-backend/internal/config"
	"bookshelf-backend/pkg/container"
	"bookshelf-backend/pkg/logger"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("starting application", map[string]interface{}{
		"name":    cfg.App.Name,
		"env":     cfg.App.Environment,
		"version": cfg.App.Version,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	c, err := container.New(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("failed to build container", err)
		return
	}
	defer c.Cleanup()

	srv := NewServer(c)
	if err := srv.Run(); err != nil {
		logger.Error("server stopped with error", err)
	}
}
