package client

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
)

const (
	validMoveNotice    = "Valid move, please wait."
	opponentMoveNotice = "Opponent moved. Your turn."
	noCell             = -1
)

// Listener receives UI events. Callbacks are made from the goroutine
// calling Handle, never while the interpreter holds its lock.
type Listener interface {
	OnMarkAssigned(mark entity.Mark)
	OnBoardUpdated(board entity.Board)
	OnMessage(message string)
	OnGameOver(result entity.Result)
}

type lineWriter interface {
	WriteLine(line string) error
}

// Interpreter turns server lines into UI events and UI moves into lines.
type Interpreter struct {
	listener Listener
	out      lineWriter

	mu            sync.Mutex
	mark          entity.Mark
	board         entity.Board
	inputEnabled  bool
	lastClicked   int
	awaitingIndex bool
	result        entity.Result
	opponentLeft  bool
}

func NewInterpreter(listener Listener, out lineWriter) *Interpreter {
	return &Interpreter{
		listener:    listener,
		out:         out,
		lastClicked: noCell,
	}
}

// Handle - consumes one inbound line.
func (that *Interpreter) Handle(line string) error {
	that.mu.Lock()

	if that.mark == entity.EmptyCell {
		if mark, err := entity.ParseMark(line); err == nil {
			that.mark = mark
			that.mu.Unlock()

			that.listener.OnMarkAssigned(mark)
			return nil
		}
	}

	if that.awaitingIndex {
		return that.opponentMoved(line)
	}

	if result, ok := protocol.ParseResult(line); ok {
		that.disableInput()
		that.result = result
		that.mu.Unlock()

		that.listener.OnGameOver(result)
		return nil
	}

	switch line {
	case protocol.ValidMove:
		return that.ownMoveAccepted()
	case protocol.InvalidMove:
		that.lastClicked = noCell
		that.enableInput()
	case protocol.OpponentMoved:
		that.awaitingIndex = true
		that.mu.Unlock()
		return nil
	case protocol.OpponentConnected:
		if that.mark == entity.MarkX {
			that.enableInput()
		}
	case protocol.OpponentDisconnected:
		that.disableInput()
		that.opponentLeft = true
	}

	that.mu.Unlock()

	that.listener.OnMessage(line)
	return nil
}

// ownMoveAccepted - called with the lock held, releases it.
func (that *Interpreter) ownMoveAccepted() error {
	cell := that.lastClicked
	that.lastClicked = noCell

	if !that.board.Place(cell, that.mark) {
		that.mu.Unlock()
		return fmt.Errorf("accepted move without a pending cell: %w", apperror.ErrInvalidCell)
	}

	board := that.board
	that.mu.Unlock()

	that.listener.OnBoardUpdated(board)
	that.listener.OnMessage(validMoveNotice)
	return nil
}

// opponentMoved - called with the lock held, releases it.
func (that *Interpreter) opponentMoved(line string) error {
	that.awaitingIndex = false

	cell, err := protocol.ParseMove(line)
	if err == nil && !that.board.Place(cell, that.mark.Opponent()) {
		err = apperror.ErrCellOccupied
	}

	if err != nil {
		that.mu.Unlock()

		that.listener.OnMessage(line)
		return fmt.Errorf("bad opponent move %q: %w", line, err)
	}

	that.enableInput()
	board := that.board
	that.mu.Unlock()

	that.listener.OnBoardUpdated(board)
	that.listener.OnMessage(opponentMoveNotice)
	return nil
}

// SendMove - writes a move line if local input is enabled.
func (that *Interpreter) SendMove(cell int) error {
	that.mu.Lock()

	if !that.inputEnabled {
		that.mu.Unlock()
		return apperror.ErrInputDisabled
	}

	if cell < 0 || cell >= entity.BoardSize {
		that.mu.Unlock()
		return fmt.Errorf("%w: %d", apperror.ErrInvalidCell, cell)
	}

	that.inputEnabled = false
	that.lastClicked = cell
	that.mu.Unlock()

	if err := that.out.WriteLine(protocol.FormatMove(cell)); err != nil {
		return fmt.Errorf("failed to send move: %w", err)
	}

	return nil
}

func (that *Interpreter) enableInput() {
	if that.result == entity.ResultNone && !that.opponentLeft {
		that.inputEnabled = true
	}
}

func (that *Interpreter) disableInput() {
	that.inputEnabled = false
	that.lastClicked = noCell
}

func (that *Interpreter) Mark() entity.Mark {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.mark
}

func (that *Interpreter) Board() entity.Board {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.board
}

func (that *Interpreter) InputEnabled() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.inputEnabled
}

// Err - why the game ended: nil after a result line, ErrOpponentLeft after
// the opponent dropped, ErrSessionAborted if neither arrived.
func (that *Interpreter) Err() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch {
	case that.result != entity.ResultNone:
		return nil
	case that.opponentLeft:
		return apperror.ErrOpponentLeft
	default:
		return apperror.ErrSessionAborted
	}
}
