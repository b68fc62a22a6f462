// Package protocol holds the newline-delimited text grammar spoken between
// the game server and its clients.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
)

const (
	PlayerXConnected     = "Player X connected"
	WaitingForOpponent   = "Waiting for another player"
	PlayerOConnected     = "Player O connected, please wait"
	OpponentConnected    = "Other player connected. Your move."
	ValidMove            = "Valid move."
	InvalidMove          = "Invalid move, try again"
	OpponentMoved        = "Opponent moved"
	OpponentDisconnected = "Opponent disconnected"

	Victory = "VICTORY"
	Defeat  = "DEFEAT"
	Tie     = "TIE"
)

// ParseMove - reads a move line into a cell index in [0, 8].
func ParseMove(line string) (int, error) {
	cell, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidMove, line)
	}

	if cell < 0 || cell >= entity.BoardSize {
		return 0, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	return cell, nil
}

func FormatMove(cell int) string {
	return strconv.Itoa(cell)
}

// ResultLine - the terminal line sent to a player for its result.
func ResultLine(result entity.Result) string {
	switch result {
	case entity.ResultVictory:
		return Victory
	case entity.ResultDefeat:
		return Defeat
	case entity.ResultTie:
		return Tie
	default:
		return ""
	}
}

func ParseResult(line string) (entity.Result, bool) {
	switch line {
	case Victory:
		return entity.ResultVictory, true
	case Defeat:
		return entity.ResultDefeat, true
	case Tie:
		return entity.ResultTie, true
	default:
		return entity.ResultNone, false
	}
}
