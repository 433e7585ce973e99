// Package realtime implements the persistent-connection core of the relay:
// the shared connection registry, the per-connection message router and the
// WebSocket front door that wires them together.
package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the writable handle the registry and routers share. It is owned by
// the transport layer; the registry only references it. Implementations must
// serialize concurrent writes so two routers fanning out at the same time
// can never interleave partial frames.
type Conn interface {
	WriteText(message string) error
	Close() error
}

// wsConn wraps a gorilla connection with a write mutex and deadline. Frame
// integrity under concurrent senders is this type's job, not the Registry's.
type wsConn struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func newWSConn(conn *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{conn: conn, writeTimeout: writeTimeout}
}

func (c *wsConn) WriteText(message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(message))
}

// ping shares the write mutex with WriteText; control frames must not split
// a text frame either.
func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
