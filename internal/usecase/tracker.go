package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/repository"
)

const storeTimeout = 2 * time.Second

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	DeleteByID(ctx context.Context, id string) error
}

type trackEvent struct {
	session entity.Session
	forget  bool
}

// SessionTracker mirrors live sessions into the repository.
// Track and Forget never block: they are called while a game holds its lock.
type SessionTracker struct {
	logger *slog.Logger
	repo   sessionRepo
	events chan trackEvent
}

func NewSessionTracker(logger *slog.Logger, repo sessionRepo, queueSize int) *SessionTracker {
	return &SessionTracker{
		logger: logger.With("component", "session_tracker"),
		repo:   repo,
		events: make(chan trackEvent, queueSize),
	}
}

func (that *SessionTracker) Track(session entity.Session) {
	that.push(trackEvent{session: session})
}

func (that *SessionTracker) Forget(id string) {
	that.push(trackEvent{session: entity.Session{ID: id}, forget: true})
}

func (that *SessionTracker) push(event trackEvent) {
	select {
	case that.events <- event:
	default:
		that.logger.Warn("tracker queue is full, dropping update",
			"session_id", event.session.ID, "forget", event.forget)
	}
}

// Run - applies queued updates in order until ctx is done.
func (that *SessionTracker) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	for {
		select {
		case <-ctx.Done():
			log.Debug("tracker stopped", "pending", len(that.events))
			return
		case event := <-that.events:
			that.apply(ctx, event)
		}
	}
}

func (that *SessionTracker) apply(ctx context.Context, event trackEvent) {
	log := that.logger.With("method", "apply", "session_id", event.session.ID)

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if event.forget {
		err := that.repo.DeleteByID(ctx, event.session.ID)
		if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			log.Error("failed to delete session", "error", err)
		}

		return
	}

	if err := that.repo.CreateOrUpdate(ctx, &event.session); err != nil {
		log.Error("failed to store session", "error", err)
	}
}
