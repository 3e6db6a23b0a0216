package stream

import (
	"errors"
	"sync"
)

// Transport errors. These never reach command callers; the registry logs
// them and evicts the connection.
var (
	ErrConnClosed   = errors.New("stream: connection closed")
	ErrSlowConsumer = errors.New("stream: consumer buffer full")
)

// Conn is one live output channel bound to a user. The handler that opened
// the stream is the only reader of Events(); the registry is the only writer.
type Conn struct {
	userID string
	ch     chan Envelope

	mu     sync.Mutex
	closed bool
}

func newConn(userID string, buffer int) *Conn {
	return &Conn{
		userID: userID,
		ch:     make(chan Envelope, buffer),
	}
}

// UserID returns the user this connection belongs to
func (c *Conn) UserID() string { return c.userID }

// Events returns the channel the stream writer drains. It is closed when the
// connection is unregistered or replaced.
func (c *Conn) Events() <-chan Envelope { return c.ch }

// send enqueues an envelope without blocking. A full buffer means the
// consumer stalled; the caller evicts the connection in that case.
func (c *Conn) send(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.ch <- env:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// close closes the event channel exactly once
func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}
