package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
)

// Console renders the game as text and reads moves as cell numbers.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (that *Console) OnMarkAssigned(mark entity.Mark) {
	that.printf("You are player %q\n", mark.String())
}

func (that *Console) OnBoardUpdated(board entity.Board) {
	that.printf("%s", RenderBoard(board))
}

func (that *Console) OnMessage(message string) {
	that.printf("%s\n", message)
}

func (that *Console) OnGameOver(result entity.Result) {
	that.printf("Game over: %s\n", strings.ToUpper(string(result)))
}

func (that *Console) printf(format string, args ...any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, _ = fmt.Fprintf(that.out, format, args...)
}

// ReadMoves - sends every number read from in as a move until in is
// exhausted or ctx is done.
func (that *Console) ReadMoves(ctx context.Context, in io.Reader, client *Client) {
	scanner := bufio.NewScanner(in)

	for ctx.Err() == nil && scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		cell, err := strconv.Atoi(text)
		if err != nil {
			that.printf("Enter a cell number from 0 to 8\n")
			continue
		}

		if err = client.SendMove(cell); err != nil {
			that.printf("Move not sent: %v\n", err)
		}
	}
}

// RenderBoard - three rows, empty cells shown by their index.
func RenderBoard(board entity.Board) string {
	var sb strings.Builder

	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}

		for col := 0; col < 3; col++ {
			cell := row*3 + col
			if col > 0 {
				sb.WriteString("|")
			}

			symbol := board[cell].String()
			if board[cell] == entity.EmptyCell {
				symbol = strconv.Itoa(cell)
			}

			sb.WriteString(" " + symbol + " ")
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
