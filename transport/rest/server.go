package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Server exposes /ping and /ready next to the game listener.
type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

func New(logger *slog.Logger, port string, checks ...Check) *Server {
	logger = logger.With("component", "health_server")
	health := newHealthHandler(logger, checks)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", health.PingHandler)
	mux.HandleFunc("GET /ready", health.ReadyHandler)

	return &Server{
		logger: logger,
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

func (that *Server) Handler() http.Handler {
	return that.srv.Handler
}

// Start - serves until ctx is cancelled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := that.srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down health server", "error", err)
		}
	})
	defer stop()

	that.logger.Info("health server is listening", "addr", that.srv.Addr)

	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
