package client

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// Bot plays a random free cell every time the interpreter enables input.
// It forwards every event to the wrapped listener first.
type Bot struct {
	logger *slog.Logger
	next   Listener

	mu          sync.Mutex
	rand        *rand.Rand
	interpreter *Interpreter
}

func NewBot(logger *slog.Logger, next Listener, seed int64) *Bot {
	return &Bot{
		logger: logger.With("component", "bot"),
		next:   next,
		rand:   rand.New(rand.NewSource(seed)), //nolint: gosec // move choice, not a secret
	}
}

// Attach - the bot moves on behalf of interpreter from now on.
func (that *Bot) Attach(interpreter *Interpreter) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.interpreter = interpreter
}

func (that *Bot) OnMarkAssigned(mark entity.Mark) {
	that.next.OnMarkAssigned(mark)
}

func (that *Bot) OnBoardUpdated(board entity.Board) {
	that.next.OnBoardUpdated(board)
	that.makeTurn()
}

func (that *Bot) OnMessage(message string) {
	that.next.OnMessage(message)
	that.makeTurn()
}

func (that *Bot) OnGameOver(result entity.Result) {
	that.next.OnGameOver(result)
}

func (that *Bot) makeTurn() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.interpreter == nil || !that.interpreter.InputEnabled() {
		return
	}

	cell, err := that.chooseCell(that.interpreter.Board())
	if err != nil {
		that.logger.Warn("bot cannot move", "error", err)
		return
	}

	if err = that.interpreter.SendMove(cell); err != nil {
		that.logger.Warn("bot failed to make turn", "cell", cell, "error", err)
	}
}

func (that *Bot) chooseCell(board entity.Board) (int, error) {
	availableCells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			availableCells = append(availableCells, i)
		}
	}

	if len(availableCells) == 0 {
		return 0, ErrNoAvailableMoves
	}

	return availableCells[that.rand.Intn(len(availableCells))], nil
}
