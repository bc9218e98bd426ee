// Package transport implements the byte-stream abstraction a debugger
// session is built on: accept one client, send a buffer, receive into a
// buffer with non-blocking semantics, close. The session never touches a
// net.Conn directly, so it can run against a real TCP socket or an
// in-memory pipe without caring which.
package transport

import (
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

// Transport is the plug-in interface consumed by the debugger core and
// provided by the host. It mirrors spec.md's "Transport plug-in interface":
// accept/close/send/receive plus buffer-size advertisement.
type Transport interface {
	// Accept binds, listens and blocks until a single client connects, or
	// returns an error.
	Accept(port int) error

	// Send pushes the entire buffer, retrying internally on would-block
	// until drained. It fails on any other error. Partial frames are never
	// left on the wire.
	Send(p []byte) error

	// Receive reads into buf[:max] without blocking. It returns (0, nil)
	// on would-block, a positive n on data, or a non-nil error on a hard
	// failure (including io.EOF).
	Receive(buf []byte, max int) (int, error)

	// Close is idempotent.
	Close() error
}

// TCP is the production Transport, backed by a single net.Conn accepted
// from a net.Listener. The listener uses the operating system's default
// backlog, not a backlog of 1; only the first connection is accepted.
type TCP struct {
	ln   net.Listener
	conn net.Conn
}

// NewTCP returns a Transport backed by a real TCP socket.
func NewTCP() *TCP {
	return &TCP{}
}

func (t *TCP) Accept(port int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return err
	}
	t.ln = ln

	conn, err := ln.Accept()
	if err != nil {
		ln.Close()
		return err
	}
	t.conn = conn

	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	return nil
}

func (t *TCP) Send(p []byte) error {
	for len(p) > 0 {
		t.conn.SetWriteDeadline(time.Time{})
		n, err := t.conn.Write(p)
		p = p[n:]
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *TCP) Receive(buf []byte, max int) (int, error) {
	if max > len(buf) {
		max = len(buf)
	}
	// A near-zero deadline turns the blocking net.Conn.Read into a
	// non-blocking poll: a timeout means "no data right now", exactly the
	// would-block semantics spec.md §4.1 requires of recv.
	t.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	n, err := t.conn.Read(buf[:max])
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return 0, nil
		}
		if errors.Is(err, io.EOF) {
			return n, io.EOF
		}
		return n, err
	}
	return n, nil
}

// RemoteAddr reports the connected client's address, or "" before a
// client has been accepted.
func (t *TCP) RemoteAddr() string {
	if t.conn == nil {
		return ""
	}
	return t.conn.RemoteAddr().String()
}

func (t *TCP) Close() error {
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	if t.ln != nil {
		err := t.ln.Close()
		t.ln = nil
		return err
	}
	return nil
}
