package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookshelf-backend/pkg/container"
	"bookshelf-backend/pkg/logger"
)

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	container *container.Container
	http      *http.Server
}

func NewServer(c *container.Container) *Server {
	router := NewRouter(c)

	return &Server{
		container: c,
		http: &http.Server{
			Addr:         ":" + c.Config.App.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server listening", map[string]interface{}{
			"addr": s.http.Addr,
		})
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", map[string]interface{}{
			"signal": sig.String(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("server stopped", nil)
	return nil
}
