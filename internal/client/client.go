package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
)

// Client is one player's connection to the game server.
type Client struct {
	logger      *slog.Logger
	conn        *protocol.Conn
	interpreter *Interpreter
}

// Dial - connects once; there is no retry.
func Dial(ctx context.Context, logger *slog.Logger, addr string, listener Listener) (*Client, error) {
	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return newClient(logger, conn, listener), nil
}

func newClient(logger *slog.Logger, conn net.Conn, listener Listener) *Client {
	wire := protocol.NewConn(conn, 0)

	return &Client{
		logger:      logger.With("component", "client", "remote_addr", wire.RemoteAddr()),
		conn:        wire,
		interpreter: NewInterpreter(listener, wire),
	}
}

func (that *Client) SendMove(cell int) error {
	return that.interpreter.SendMove(cell)
}

func (that *Client) Interpreter() *Interpreter {
	return that.interpreter
}

// Run - feeds server lines to the interpreter until the server closes the
// connection or ctx is cancelled. A finished game returns nil.
func (that *Client) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	stop := context.AfterFunc(ctx, func() {
		_ = that.conn.Close()
	})
	defer stop()
	defer that.conn.Close()

	for {
		line, err := that.conn.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			if errors.Is(err, io.EOF) {
				return that.interpreter.Err()
			}

			return fmt.Errorf("failed to read from server: %w", err)
		}

		if err = that.interpreter.Handle(line); err != nil {
			log.Warn("unexpected server line", "line", line, "error", err)
		}
	}
}
