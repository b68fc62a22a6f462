package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
)

const (
	outboxSize   = 32
	drainTimeout = 5 * time.Second
)

type outLine struct {
	text     string
	terminal bool
}

// outbox serialises every line written to one connection. Lines may be
// queued from either player's goroutine; a single writer drains them.
type outbox struct {
	logger *slog.Logger
	conn   *protocol.Conn

	lines chan outLine
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newOutbox(logger *slog.Logger, conn *protocol.Conn) *outbox {
	return &outbox{
		logger: logger,
		conn:   conn,
		lines:  make(chan outLine, outboxSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// send - queues a line. Returns false once the outbox is shut.
func (that *outbox) send(text string) bool {
	return that.enqueue(outLine{text: text})
}

// sendTerminal - queues the last line; the connection is closed after it is written.
func (that *outbox) sendTerminal(text string) bool {
	return that.enqueue(outLine{text: text, terminal: true})
}

func (that *outbox) enqueue(line outLine) bool {
	select {
	case <-that.quit:
		return false
	default:
	}

	select {
	case that.lines <- line:
		return true
	default:
		// the client stopped reading; never block the caller, it may hold the game lock
		that.logger.Warn("outbox is full, dropping connection", "line", line.text)
		that.shut()
		return false
	}
}

// run writes queued lines until a terminal line, a write error or shutdown.
func (that *outbox) run() {
	defer close(that.done)
	defer that.conn.Close()

	for {
		select {
		case line := <-that.lines:
			if !that.write(line) {
				return
			}
		case <-that.quit:
			that.drain()
			return
		}
	}
}

func (that *outbox) drain() {
	if err := that.conn.SetWriteDeadline(time.Now().Add(drainTimeout)); err != nil {
		that.logger.Debug("failed to set write deadline", "error", err)
	}

	for {
		select {
		case line := <-that.lines:
			if !that.write(line) {
				return
			}
		default:
			return
		}
	}
}

func (that *outbox) write(line outLine) bool {
	if err := that.conn.WriteLine(line.text); err != nil {
		that.logger.Warn("failed to write line", "line", line.text, "error", err)
		that.shut()
		return false
	}

	that.logger.Debug("line sent", "line", line.text)

	if line.terminal {
		that.shut()
		return false
	}

	return true
}

// shut stops accepting lines; already queued lines are still drained.
func (that *outbox) shut() {
	that.once.Do(func() {
		close(that.quit)
	})
}

// close - shuts the outbox and waits for the writer, bounding how long a
// stalled peer can hold it.
func (that *outbox) close() {
	that.shut()

	if err := that.conn.SetWriteDeadline(time.Now().Add(drainTimeout)); err != nil {
		that.logger.Debug("failed to set write deadline", "error", err)
	}

	<-that.done
}
