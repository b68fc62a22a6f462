package protocol

import (
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	t.Run("Accepts every board cell", func(t *testing.T) {
		for cell := 0; cell < entity.BoardSize; cell++ {
			parsed, err := ParseMove(FormatMove(cell))
			require.NoError(t, err)
			assert.Equal(t, cell, parsed)
		}
	})

	t.Run("Tolerates surrounding whitespace", func(t *testing.T) {
		cell, err := ParseMove(" 7 \r")
		require.NoError(t, err)
		assert.Equal(t, 7, cell)
	})

	t.Run("Rejects non-integer text", func(t *testing.T) {
		_, err := ParseMove("center")
		require.ErrorIs(t, err, apperror.ErrInvalidMove)

		_, err = ParseMove("")
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
	})

	t.Run("Rejects out of range cells", func(t *testing.T) {
		_, err := ParseMove("9")
		require.ErrorIs(t, err, apperror.ErrInvalidCell)

		_, err = ParseMove("-1")
		require.ErrorIs(t, err, apperror.ErrInvalidCell)
	})
}

func TestResultLines(t *testing.T) {
	for _, result := range []entity.Result{entity.ResultVictory, entity.ResultDefeat, entity.ResultTie} {
		parsed, ok := ParseResult(ResultLine(result))
		require.True(t, ok)
		assert.Equal(t, result, parsed)
	}

	assert.Empty(t, ResultLine(entity.ResultNone))

	_, ok := ParseResult(ValidMove)
	assert.False(t, ok)
}

func TestConn_Lines(t *testing.T) {
	// Given: two ends of an in-memory connection
	left, right := net.Pipe()
	t.Cleanup(func() {
		_ = left.Close()
		_ = right.Close()
	})

	writer := NewConn(left, 0)
	reader := NewConn(right, time.Second)

	// When: lines are written on one end
	go func() {
		_ = writer.WriteLine(ValidMove)
		_ = writer.WriteLine("4\r")
		_ = writer.Close()
	}()

	// Then: they arrive in order without terminators, followed by EOF
	line, err := reader.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, ValidMove, line)

	line, err = reader.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "4", line)

	_, err = reader.ReadLine()
	require.ErrorIs(t, err, io.EOF)
}

func TestConn_IdleTimer(t *testing.T) {
	idle := 50 * time.Millisecond

	t.Run("IdleTimer_StartedReadTimesOut", func(t *testing.T) {
		// Given: a reader whose idle timer is running
		left, right := net.Pipe()
		t.Cleanup(func() {
			_ = left.Close()
			_ = right.Close()
		})

		reader := NewConn(right, idle)
		require.NoError(t, reader.StartIdleTimer())

		// When: nothing arrives
		_, err := reader.ReadLine()

		// Then: the read fails with a deadline error
		require.ErrorIs(t, err, os.ErrDeadlineExceeded)
	})

	t.Run("IdleTimer_StoppedReadWaits", func(t *testing.T) {
		// Given: a reader whose idle timer was started and then stopped
		left, right := net.Pipe()
		t.Cleanup(func() {
			_ = left.Close()
			_ = right.Close()
		})

		writer := NewConn(left, 0)
		reader := NewConn(right, idle)
		require.NoError(t, reader.StartIdleTimer())
		require.NoError(t, reader.StopIdleTimer())

		// When: the line comes later than the idle timeout
		go func() {
			time.Sleep(3 * idle)
			_ = writer.WriteLine(Tie)
		}()

		// Then: it is still read
		line, err := reader.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, Tie, line)
	})

	t.Run("IdleTimer_DisabledIsNoop", func(t *testing.T) {
		left, right := net.Pipe()
		t.Cleanup(func() {
			_ = left.Close()
			_ = right.Close()
		})

		reader := NewConn(right, 0)

		require.NoError(t, reader.StartIdleTimer())
		require.NoError(t, reader.StopIdleTimer())
	})
}
