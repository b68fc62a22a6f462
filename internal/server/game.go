package server

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/tictactoe"
)

// SessionTracker receives snapshots of live games. Track may be called with
// the game lock held and must not block.
type SessionTracker interface {
	Track(session entity.Session)
	Forget(id string)
}

type discardTracker struct{}

func (discardTracker) Track(entity.Session) {}

func (discardTracker) Forget(string) {}

// Game pairs two player sessions around one coordinator.
type Game struct {
	id          string
	logger      *slog.Logger
	coordinator *tictactoe.Coordinator
	tracker     SessionTracker

	mu       sync.RWMutex
	sessions map[entity.Mark]*PlayerSession
	active   int
}

func newGame(logger *slog.Logger, id string, tracker SessionTracker) *Game {
	return &Game{
		id:          id,
		logger:      logger.With("session_id", id),
		coordinator: tictactoe.NewCoordinator(id),
		tracker:     tracker,
		sessions:    make(map[entity.Mark]*PlayerSession, 2),
	}
}

func (that *Game) ID() string {
	return that.id
}

func (that *Game) Snapshot() entity.Session {
	return that.coordinator.Snapshot()
}

func (that *Game) add(session *PlayerSession) {
	that.coordinator.Join(session.player)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.Mark()] = session
	that.active++

	// abort may have run before this session was registered
	if errors.Is(that.coordinator.Err(), apperror.ErrSessionAborted) {
		session.stop()
	}
}

// leave - reports whether the last session of the game has ended.
func (that *Game) leave() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.active--

	return that.active == 0
}

// peer - the opponent of mark, nil until it has connected.
func (that *Game) peer(mark entity.Mark) *PlayerSession {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.sessions[mark.Opponent()]
}

// abort - stops the game and closes both connections.
func (that *Game) abort() {
	that.coordinator.Abort()

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, session := range that.sessions {
		session.stop()
	}
}
