package notify

import (
	"errors"
	"sync"
)

var ErrConnClosed = errors.New("connection closed")

// StreamConn adapts a streaming HTTP response to the Conn interface. Events
// are handed off through a bounded channel; when the consumer falls behind
// the write is dropped rather than buffered, keeping notifications
// best-effort.
type StreamConn struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

func NewStreamConn(buffer int) *StreamConn {
	return &StreamConn{ch: make(chan []byte, buffer)}
}

// C is the channel the transport goroutine drains.
func (c *StreamConn) C() <-chan []byte {
	return c.ch
}

func (c *StreamConn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.ch <- data:
	default:
		// Consumer is not keeping up; skip this event.
	}
	return nil
}

func (c *StreamConn) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *StreamConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
