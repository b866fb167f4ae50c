package server

import (
	"net/http"

	"github.com/fleetflow/fleetflow/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the dashboard origin; auth happens at
	// the gateway in front of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection, registers it with the hub
// under the caller's user id, and then only reads until the peer goes
// away. All writes flow through the hub.
func (s *Server) handleWebSocket(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := realtime.NewWSConn(ws)
	s.hub.Connect(conn, userID)
	defer func() {
		s.hub.Disconnect(conn, userID)
		_ = conn.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
