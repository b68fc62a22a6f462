package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const checkTimeout = 2 * time.Second

// Check is one readiness check, for example the game listener or Redis.
type Check struct {
	Name  string
	Ready func(ctx context.Context) error
}

type healthHandler struct {
	logger *slog.Logger
	checks []Check
}

func newHealthHandler(logger *slog.Logger, checks []Check) *healthHandler {
	return &healthHandler{
		logger: logger,
		checks: checks,
	}
}

func (that *healthHandler) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *healthHandler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ReadyHandler")

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	var failed []string
	for _, check := range that.checks {
		if err := check.Ready(ctx); err != nil {
			log.Warn("readiness check failed", "check", check.Name, "error", err)
			failed = append(failed, fmt.Sprintf("%s: %v", check.Name, err))
		}
	}

	if len(failed) > 0 {
		http.Error(w, strings.Join(failed, "\n"), http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
