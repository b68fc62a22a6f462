package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
)

type Mark string

const (
	MarkX     Mark = "X"
	MarkO     Mark = "O"
	EmptyCell Mark = ""
)

const BoardSize = 9

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// ParseMark - converts a wire token into a player mark.
func ParseMark(token string) (Mark, error) {
	switch mark := Mark(token); mark {
	case MarkX, MarkO:
		return mark, nil
	default:
		return EmptyCell, fmt.Errorf("%w: %q", apperror.ErrUnknownMark, token)
	}
}

func (that Mark) IsPlayer() bool {
	return that == MarkX || that == MarkO
}

func (that Mark) Opponent() Mark {
	switch that {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return EmptyCell
	}
}

func (that Mark) String() string {
	if that == EmptyCell {
		return "-"
	}
	return string(that)
}

// Board is a 3x3 grid stored row by row: row = cell/3, col = cell%3.
type Board [BoardSize]Mark

// Place - sets the cell if it is on the board and still empty.
func (that *Board) Place(cell int, mark Mark) bool {
	if cell < 0 || cell >= len(that) || !mark.IsPlayer() {
		return false
	}

	if that[cell] != EmptyCell {
		return false
	}

	that[cell] = mark

	return true
}

func (that Board) Winner() Mark {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

func (that Board) HasWinner() bool {
	return that.Winner() != EmptyCell
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that Board) IsGameOver() bool {
	return that.HasWinner() || that.IsFull()
}

// Count - number of occupied cells.
func (that Board) Count() int {
	count := 0
	for _, cell := range that {
		if cell != EmptyCell {
			count++
		}
	}

	return count
}

func (that Board) Outcome() Outcome {
	switch that.Winner() {
	case MarkX:
		return OutcomeXWins
	case MarkO:
		return OutcomeOWins
	}

	if that.IsFull() {
		return OutcomeTie
	}

	return OutcomeOngoing
}
