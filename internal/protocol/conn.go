package protocol

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// Conn frames a stream connection into text lines.
type Conn struct {
	conn        net.Conn
	scanner     *bufio.Scanner
	writer      *bufio.Writer
	idleTimeout time.Duration
}

// NewConn - idleTimeout of zero disables the idle timer.
func NewConn(conn net.Conn, idleTimeout time.Duration) *Conn {
	return &Conn{
		conn:        conn,
		scanner:     bufio.NewScanner(conn),
		writer:      bufio.NewWriter(conn),
		idleTimeout: idleTimeout,
	}
}

// StartIdleTimer - a pending or future ReadLine fails unless a line arrives
// within the idle timeout. Safe to call while another goroutine reads.
func (that *Conn) StartIdleTimer() error {
	if that.idleTimeout <= 0 {
		return nil
	}

	if err := that.conn.SetReadDeadline(time.Now().Add(that.idleTimeout)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	return nil
}

// StopIdleTimer - reads may block indefinitely again.
func (that *Conn) StopIdleTimer() error {
	if that.idleTimeout <= 0 {
		return nil
	}

	if err := that.conn.SetReadDeadline(time.Time{}); err != nil {
		return fmt.Errorf("failed to clear read deadline: %w", err)
	}

	return nil
}

// ReadLine - blocks until a full line arrives. Returns io.EOF when the peer
// closed the connection.
func (that *Conn) ReadLine() (string, error) {
	if !that.scanner.Scan() {
		if err := that.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read line: %w", err)
		}
		return "", io.EOF
	}

	return strings.TrimRight(that.scanner.Text(), "\r"), nil
}

func (that *Conn) WriteLine(line string) error {
	if _, err := that.writer.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}

	if err := that.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

// SetWriteDeadline bounds pending and future writes.
func (that *Conn) SetWriteDeadline(deadline time.Time) error {
	return that.conn.SetWriteDeadline(deadline)
}

func (that *Conn) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}

func (that *Conn) Close() error {
	return that.conn.Close()
}
