package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnClosed = errors.New("connection closed")
	ErrSendFull   = errors.New("send buffer full")
)

// Envelope is the wire frame for every server→client push and every
// client→server command.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn wraps one websocket connection. All writes go through a buffered
// outbox drained by a single writer goroutine, so pushes from the dispatch
// path never touch the socket directly and per-connection delivery order
// matches enqueue order.
type Conn struct {
	id string
	ws *websocket.Conn

	outbox chan Envelope

	mu     sync.Mutex
	closed bool

	writeTimeout time.Duration
}

func newConn(id string, ws *websocket.Conn, buffer int, writeTimeout time.Duration) *Conn {
	return &Conn{
		id:           id,
		ws:           ws,
		outbox:       make(chan Envelope, buffer),
		writeTimeout: writeTimeout,
	}
}

func (c *Conn) ID() string { return c.id }

// Push enqueues an envelope for delivery. It fails fast instead of
// blocking: a closed connection returns ErrConnClosed, a full outbox
// (frozen or badly lagging peer) returns ErrSendFull. Either way the
// caller treats it as a delivery failure on this connection only.
func (c *Conn) Push(env Envelope) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConnClosed
	}
	select {
	case c.outbox <- env:
		c.mu.Unlock()
		return nil
	default:
		c.mu.Unlock()
		return ErrSendFull
	}
}

// close marks the connection dead and closes the outbox so the writer
// goroutine drains and exits. Safe to call more than once.
func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.outbox)
}

// writeLoop drains the outbox onto the socket. Runs as the connection's
// single writer goroutine; exits when the outbox is closed or a write
// fails, then drops the underlying socket.
func (c *Conn) writeLoop() {
	defer c.ws.Close()
	for env := range c.outbox {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		if err := c.ws.WriteJSON(env); err != nil {
			return
		}
	}
}
