package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WSConn adapts a gorilla websocket connection to the hub's Conn
// interface. Writes are serialized: gorilla allows at most one
// concurrent writer per connection.
type WSConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

func (c *WSConn) Send(message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(message))
}

func (c *WSConn) Close() error {
	return c.conn.Close()
}
