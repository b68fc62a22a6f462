package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/tictactoe"
)

type State int32

const (
	StateConnecting State = iota
	StateWaitingForOpponent
	StateAwaitingMyMove
	StateAwaitingOpponentMove
	StateGameOver
)

func (that State) String() string {
	switch that {
	case StateConnecting:
		return "connecting"
	case StateWaitingForOpponent:
		return "waiting_for_opponent"
	case StateAwaitingMyMove:
		return "awaiting_my_move"
	case StateAwaitingOpponentMove:
		return "awaiting_opponent_move"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// PlayerSession mediates between one client connection and the shared game.
type PlayerSession struct {
	logger *slog.Logger
	player *entity.Player
	conn   *protocol.Conn
	outbox *outbox
	game   *Game

	state atomic.Int32
}

// newPlayerSession - queues the greeting before the session becomes visible
// to its opponent, so the mark is always the first line on the wire.
func newPlayerSession(logger *slog.Logger, conn *protocol.Conn, mark entity.Mark, game *Game) *PlayerSession {
	log := logger.With("mark", mark, "remote_addr", conn.RemoteAddr())

	session := &PlayerSession{
		logger: log,
		player: entity.NewPlayer(mark, conn.RemoteAddr()),
		conn:   conn,
		outbox: newOutbox(log, conn),
		game:   game,
	}

	session.outbox.send(string(mark))

	if mark == entity.MarkX {
		session.outbox.send(protocol.PlayerXConnected)
		session.outbox.send(protocol.WaitingForOpponent)
		session.setState(StateWaitingForOpponent)
	} else {
		session.outbox.send(protocol.PlayerOConnected)
		session.setState(StateAwaitingOpponentMove)
	}

	return session
}

func (that *PlayerSession) Mark() entity.Mark {
	return that.player.Mark
}

func (that *PlayerSession) State() State {
	return State(that.state.Load())
}

// Run - serves the connection until the game ends or the connection fails.
// A finished game returns nil.
func (that *PlayerSession) Run() error {
	go that.outbox.run()
	defer that.outbox.close()

	err := that.play()
	that.setState(StateGameOver)

	return that.finish(err)
}

func (that *PlayerSession) play() error {
	coordinator := that.game.coordinator

	if err := coordinator.AwaitConnectionReady(that.Mark()); err != nil {
		return err
	}

	if that.Mark() == entity.MarkX {
		that.outbox.send(protocol.OpponentConnected)
		that.setState(StateAwaitingMyMove)
	}

	for {
		line, err := that.conn.ReadLine()
		if err != nil {
			return err
		}

		cell, err := protocol.ParseMove(line)
		if err != nil {
			that.logger.Info("malformed move", "line", line, "error", err)
			that.outbox.send(protocol.InvalidMove)
			that.touch()
			continue
		}

		finished, err := that.move(cell)
		if err != nil {
			return err
		}

		if finished {
			return nil
		}
	}
}

// move - submits cell, waiting for the turn if needed without reading more input.
func (that *PlayerSession) move(cell int) (bool, error) {
	coordinator := that.game.coordinator
	log := that.logger.With("cell", cell)

	for {
		result := coordinator.TryAcceptMove(that.Mark(), cell, that.announce(cell))
		log.Debug("move submitted", "result", result)

		switch result {
		case tictactoe.Accepted:
			if coordinator.Err() != nil {
				return true, nil
			}
			return false, nil
		case tictactoe.Rejected:
			if err := coordinator.Err(); err != nil {
				return false, err
			}
			that.outbox.send(protocol.InvalidMove)
			that.touch()
			return false, nil
		case tictactoe.NotYourTurn:
			if err := coordinator.AwaitTurn(that.Mark()); err != nil {
				return false, err
			}
		}
	}
}

// announce runs under the coordinator lock, so both outboxes see accepted
// moves in the order they were applied.
func (that *PlayerSession) announce(cell int) tictactoe.Announcer {
	return func(snapshot entity.Session) {
		peer := that.game.peer(that.Mark())

		that.outbox.send(protocol.ValidMove)
		that.setState(StateAwaitingOpponentMove)

		if peer != nil {
			peer.outbox.send(protocol.OpponentMoved)
			peer.outbox.send(protocol.FormatMove(cell))
			peer.setState(StateAwaitingMyMove)
		}

		if snapshot.Winner.IsFinished() {
			that.conclude(snapshot.Winner)
			if peer != nil {
				peer.conclude(snapshot.Winner)
			}
		}

		that.game.tracker.Track(snapshot)
	}
}

func (that *PlayerSession) conclude(outcome entity.Outcome) {
	that.setState(StateGameOver)
	that.outbox.sendTerminal(protocol.ResultLine(outcome.ResultFor(that.Mark())))
}

// opponentLeft - best-effort notice that the peer connection is gone.
func (that *PlayerSession) opponentLeft() {
	that.setState(StateGameOver)
	that.outbox.sendTerminal(protocol.OpponentDisconnected)
}

// stop - closes the connection without a notice.
func (that *PlayerSession) stop() {
	that.outbox.shut()
}

func (that *PlayerSession) finish(err error) error {
	switch coordinatorErr := that.game.coordinator.Err(); {
	case errors.Is(coordinatorErr, apperror.ErrGameFinished):
		that.logger.Info("game over", "outcome", that.game.coordinator.Snapshot().Winner)
		return nil
	case errors.Is(coordinatorErr, apperror.ErrSessionAborted):
		return coordinatorErr
	}

	// the connection failed mid-game
	if that.game.coordinator.Abort() {
		if peer := that.game.peer(that.Mark()); peer != nil {
			peer.opponentLeft()
		}
		that.game.tracker.Track(that.game.coordinator.Snapshot())
	}

	return fmt.Errorf("connection lost: %w", err)
}

// setState - the idle timer runs only while the session awaits its own move.
func (that *PlayerSession) setState(state State) {
	previous := State(that.state.Swap(int32(state)))
	if previous == state {
		return
	}

	that.logger.Debug("state changed", "from", previous, "to", state)

	switch {
	case state == StateAwaitingMyMove:
		that.idleTimer(that.conn.StartIdleTimer)
	case previous == StateAwaitingMyMove:
		that.idleTimer(that.conn.StopIdleTimer)
	}
}

// touch - a rejected line on the session's own turn restarts its idle timer.
func (that *PlayerSession) touch() {
	if that.State() == StateAwaitingMyMove {
		that.idleTimer(that.conn.StartIdleTimer)
	}
}

func (that *PlayerSession) idleTimer(apply func() error) {
	if err := apply(); err != nil {
		that.logger.Debug("failed to update idle timer", "error", err)
	}
}
