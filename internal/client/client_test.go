package client

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/server"
)

const waitTimeout = 2 * time.Second

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func startGameServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := server.New(newTestLogger(), listener, nil, server.Options{Games: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return listener.Addr().String()
}

type runningClient struct {
	*Client
	listener *recordingListener
	done     chan error
}

func startClient(t *testing.T, addr string) *runningClient {
	t.Helper()

	listener := &recordingListener{}
	client, err := Dial(context.Background(), newTestLogger(), addr, listener)
	require.NoError(t, err)

	running := &runningClient{Client: client, listener: listener, done: make(chan error, 1)}
	go func() {
		running.done <- client.Run(context.Background())
	}()

	return running
}

func (that *runningClient) waitInput(t *testing.T) {
	t.Helper()

	require.Eventually(t, that.Interpreter().InputEnabled, waitTimeout, 5*time.Millisecond)
}

func (that *runningClient) move(t *testing.T, cell int) {
	t.Helper()

	that.waitInput(t)
	require.NoError(t, that.SendMove(cell))
}

func (that *runningClient) wait(t *testing.T) error {
	t.Helper()

	select {
	case err := <-that.done:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("client did not finish")
		return nil
	}
}

func TestClient_PlaysFullGame(t *testing.T) {
	// Given: a server and two clients
	addr := startGameServer(t)
	x := startClient(t, addr)
	require.Eventually(t, func() bool { return x.Interpreter().Mark() == entity.MarkX }, waitTimeout, 5*time.Millisecond)
	o := startClient(t, addr)

	// When: X completes the top row while O plays 3 and 4
	x.move(t, 0)
	o.move(t, 3)
	x.move(t, 1)
	o.move(t, 4)
	x.move(t, 2)

	// Then: both clients finish cleanly with opposite results
	require.NoError(t, x.wait(t))
	require.NoError(t, o.wait(t))

	assert.Equal(t, []entity.Result{entity.ResultVictory}, x.listener.gameResults())
	assert.Equal(t, []entity.Result{entity.ResultDefeat}, o.listener.gameResults())

	want := entity.Board{entity.MarkX, entity.MarkX, entity.MarkX, entity.MarkO, entity.MarkO}
	assert.Equal(t, want, x.Interpreter().Board())
	assert.Equal(t, want, o.Interpreter().Board())
}

func TestClient_OpponentLeaves(t *testing.T) {
	addr := startGameServer(t)
	x := startClient(t, addr)
	require.Eventually(t, func() bool { return x.Interpreter().Mark() == entity.MarkX }, waitTimeout, 5*time.Millisecond)
	o := startClient(t, addr)

	x.move(t, 0)
	o.waitInput(t)

	// When: O drops its connection
	require.NoError(t, o.conn.Close())

	// Then: X is told and its run ends with ErrOpponentLeft
	require.ErrorIs(t, x.wait(t), apperror.ErrOpponentLeft)
	assert.False(t, x.Interpreter().InputEnabled())
}

func TestClient_RunStopsOnCancel(t *testing.T) {
	// Given: a client connected to a peer that never speaks
	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() { _ = serverSide.Close() })

	client := newClient(newTestLogger(), clientSide, &recordingListener{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- client.Run(ctx)
	}()

	// When: the context is cancelled
	cancel()

	// Then: Run returns nil
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("client did not stop")
	}
}

func TestClient_ServerClosesEarly(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	client := newClient(newTestLogger(), clientSide, &recordingListener{})

	done := make(chan error, 1)
	go func() {
		done <- client.Run(context.Background())
	}()

	// When: the server sends the mark and hangs up
	_, err := serverSide.Write([]byte("X\n"))
	require.NoError(t, err)
	require.NoError(t, serverSide.Close())

	// Then: the session is reported as aborted
	require.ErrorIs(t, <-done, apperror.ErrSessionAborted)
}

func TestConsole_ReadMoves(t *testing.T) {
	// Given: a client holding the turn over a pipe
	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() { _ = serverSide.Close() })

	var screen bytes.Buffer
	console := NewConsole(&screen)
	client := newClient(newTestLogger(), clientSide, console)

	require.NoError(t, client.Interpreter().Handle("X"))
	require.NoError(t, client.Interpreter().Handle("Other player connected. Your move."))

	received := make(chan string, 1)
	go func() {
		buf := make([]byte, 16)
		n, _ := serverSide.Read(buf)
		received <- string(buf[:n])
	}()

	// When: the user types junk, then a cell
	console.ReadMoves(context.Background(), strings.NewReader("abc\n\n4\n"), client)

	// Then: only the cell goes out
	assert.Equal(t, "4\n", <-received)
	assert.Contains(t, screen.String(), `You are player "X"`)
	assert.Contains(t, screen.String(), "Enter a cell number from 0 to 8")
}

func TestRenderBoard(t *testing.T) {
	board := entity.Board{entity.MarkX, "", entity.MarkO}

	want := " X | 1 | O \n" +
		"---+---+---\n" +
		" 3 | 4 | 5 \n" +
		"---+---+---\n" +
		" 6 | 7 | 8 \n"

	assert.Equal(t, want, RenderBoard(board))
}
