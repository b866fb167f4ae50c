package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Conn is one outbound client channel. Send fails when the remote end is
// gone; the hub treats a failed conn as dead and prunes it.
type Conn interface {
	Send(message string) error
	Close() error
}

// Hub tracks live connections keyed by user id. A user may hold several
// connections at once (multiple tabs). All map mutation is serialized by
// one mutex; sends happen outside the lock against a snapshot so a slow
// or dead peer never blocks connect/disconnect.
type Hub struct {
	mu    sync.Mutex
	conns map[string][]Conn
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		conns: make(map[string][]Conn),
		log:   log.Named("realtime.hub"),
	}
}

func (h *Hub) Connect(conn Conn, userID string) {
	h.mu.Lock()
	h.conns[userID] = append(h.conns[userID], conn)
	total := h.sessionCountLocked()
	h.mu.Unlock()

	h.log.Info("client connected",
		zap.String("user_id", userID),
		zap.Int("total_sessions", total),
	)
}

func (h *Hub) Disconnect(conn Conn, userID string) {
	h.mu.Lock()
	h.removeLocked(conn, userID)
	h.mu.Unlock()

	h.log.Info("client disconnected", zap.String("user_id", userID))
}

// Broadcast sends message to every live connection. Connections whose
// send fails are removed from the registry.
func (h *Hub) Broadcast(message string) {
	h.mu.Lock()
	snapshot := make(map[string][]Conn, len(h.conns))
	for userID, conns := range h.conns {
		snapshot[userID] = append([]Conn(nil), conns...)
	}
	h.mu.Unlock()

	type deadConn struct {
		userID string
		conn   Conn
	}
	var dead []deadConn
	for userID, conns := range snapshot {
		for _, conn := range conns {
			if err := conn.Send(message); err != nil {
				dead = append(dead, deadConn{userID: userID, conn: conn})
			}
		}
	}

	if len(dead) == 0 {
		return
	}
	h.mu.Lock()
	for _, d := range dead {
		h.removeLocked(d.conn, d.userID)
	}
	h.mu.Unlock()
	h.log.Debug("pruned dead connections", zap.Int("count", len(dead)))
}

// SendToUser sends message to one user's connections only, best effort.
func (h *Hub) SendToUser(userID, message string) {
	h.mu.Lock()
	snapshot := append([]Conn(nil), h.conns[userID]...)
	h.mu.Unlock()

	for _, conn := range snapshot {
		if err := conn.Send(message); err != nil {
			h.log.Debug("send to user failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// Sessions reports the number of live connections across all users.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessionCountLocked()
}

func (h *Hub) removeLocked(conn Conn, userID string) {
	conns := h.conns[userID]
	for i, c := range conns {
		if c == conn {
			h.conns[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

func (h *Hub) sessionCountLocked() int {
	total := 0
	for _, conns := range h.conns {
		total += len(conns)
	}
	return total
}
