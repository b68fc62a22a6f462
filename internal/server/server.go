package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
)

type Options struct {
	// Games is the number of games to serve before the listener is closed;
	// zero or less keeps pairing players until the context is canceled.
	Games       int
	IdleTimeout time.Duration
}

// Server accepts players two at a time and runs one game per pair.
type Server struct {
	logger   *slog.Logger
	listener net.Listener
	tracker  SessionTracker
	options  Options

	accepting atomic.Bool

	wg    sync.WaitGroup
	mu    sync.Mutex
	games map[string]*Game
}

func New(logger *slog.Logger, listener net.Listener, tracker SessionTracker, options Options) *Server {
	if tracker == nil {
		tracker = discardTracker{}
	}

	return &Server{
		logger:   logger.With("component", "server"),
		listener: listener,
		tracker:  tracker,
		options:  options,
		games:    make(map[string]*Game),
	}
}

func (that *Server) Addr() net.Addr {
	return that.listener.Addr()
}

// Ready - nil while the server is accepting players.
func (that *Server) Ready(_ context.Context) error {
	if !that.accepting.Load() {
		return apperror.ErrNotAccepting
	}

	return nil
}

// Serve - accepts pairs of players until the configured number of games has
// started, then waits for those games to end. An accept error is returned
// to the caller; cancelling ctx aborts live games and returns nil.
func (that *Server) Serve(ctx context.Context) error {
	log := that.logger.With("method", "Serve")

	if that.listener == nil {
		return apperror.ErrListenerMissing
	}

	stop := context.AfterFunc(ctx, func() {
		log.Info("shutting down")
		_ = that.listener.Close()
		that.abortAll()
	})
	defer stop()
	defer that.wg.Wait()

	log.Info("accepting players", "addr", that.listener.Addr().String(), "games", that.options.Games)

	that.accepting.Store(true)
	defer that.accepting.Store(false)

	for served := 0; that.options.Games <= 0 || served < that.options.Games; served++ {
		if err := that.servePair(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to accept players: %w", err)
		}
	}

	that.accepting.Store(false)
	log.Info("all games started, no longer accepting players")

	if err := that.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warn("failed to close listener", "error", err)
	}

	return nil
}

// servePair - X starts as soon as it connects so it can be told it is
// waiting; O's arrival releases it.
func (that *Server) servePair() error {
	game := newGame(that.logger, uuid.NewString(), that.tracker)
	log := game.logger

	first, err := that.listener.Accept()
	if err != nil {
		return fmt.Errorf("accept player X: %w", err)
	}

	that.register(game)
	that.start(game, first, entity.MarkX)
	log.Info("player connected", "mark", entity.MarkX, "remote_addr", first.RemoteAddr().String())

	second, err := that.listener.Accept()
	if err != nil {
		game.abort()
		return fmt.Errorf("accept player O: %w", err)
	}

	that.start(game, second, entity.MarkO)
	log.Info("player connected", "mark", entity.MarkO, "remote_addr", second.RemoteAddr().String())

	game.coordinator.OpponentConnected(that.tracker.Track)

	return nil
}

func (that *Server) start(game *Game, conn net.Conn, mark entity.Mark) {
	session := newPlayerSession(game.logger, protocol.NewConn(conn, that.options.IdleTimeout), mark, game)
	game.add(session)

	that.wg.Add(1)
	go func() {
		defer that.wg.Done()

		if err := session.Run(); err != nil {
			game.logger.Warn("session ended", "mark", mark, "error", err)
		}

		if game.leave() {
			that.unregister(game)
			that.tracker.Forget(game.ID())
			game.logger.Info("game closed")
		}
	}()
}

func (that *Server) register(game *Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID()] = game
}

func (that *Server) unregister(game *Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, game.ID())
}

func (that *Server) abortAll() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, game := range that.games {
		game.abort()
	}
}
