package server

import (
	"io"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeOutbox(t *testing.T) (*outbox, *protocol.Conn) {
	t.Helper()

	serverSide, clientSide := net.Pipe()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	client := protocol.NewConn(clientSide, time.Second)
	t.Cleanup(func() {
		_ = client.Close()
	})

	return newOutbox(logger, protocol.NewConn(serverSide, 0)), client
}

func TestOutbox_TerminalLineClosesConnection(t *testing.T) {
	// Given: an outbox with two queued lines, the last one terminal
	box, client := newPipeOutbox(t)
	require.True(t, box.send(protocol.ValidMove))
	require.True(t, box.sendTerminal(protocol.Victory))

	// When: the writer runs
	go box.run()

	// Then: the client reads both lines and then EOF
	expectLines(t, client, protocol.ValidMove, protocol.Victory)
	expectClosed(t, client)

	// Then: later lines are refused
	box.close()
	assert.False(t, box.send(protocol.InvalidMove))
}

func TestOutbox_CloseDrainsQueuedLines(t *testing.T) {
	box, client := newPipeOutbox(t)
	require.True(t, box.send(protocol.OpponentMoved))
	require.True(t, box.send("3"))

	go box.run()

	done := make(chan struct{})
	go func() {
		box.close()
		close(done)
	}()

	expectLines(t, client, protocol.OpponentMoved, "3")
	_, err := client.ReadLine()
	require.ErrorIs(t, err, io.EOF)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("close did not return")
	}
}

func TestOutbox_FullQueueDropsConnection(t *testing.T) {
	// Given: an outbox whose writer never runs
	box, _ := newPipeOutbox(t)

	// When: more lines are queued than it can hold
	for range outboxSize {
		require.True(t, box.send(protocol.InvalidMove))
	}

	// Then: the next send is refused instead of blocking
	assert.False(t, box.send(protocol.InvalidMove))
	assert.False(t, box.send(protocol.InvalidMove))
}
