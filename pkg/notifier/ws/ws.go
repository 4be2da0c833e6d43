package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection wraps websocket.Conn with metadata
type Connection struct {
	Conn    *websocket.Conn
	RoleKey string

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch records liveness; the socket handler calls it from the pong handler
// so Heartbeat never evicts a connection that is still answering pings.
func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Connection) idleFor(d time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastSeen) > d
}

// Manager fans live in-app notifications out to connected clients, keyed
// by user role id.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{} // roleID -> set of connections
	logger      *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]map[*Connection]struct{}),
		logger:      logger,
	}
}

// Add registers a connection for a user role
func (m *Manager) Add(roleID string, conn *websocket.Conn) *Connection {
	c := &Connection{Conn: conn, RoleKey: roleID, lastSeen: time.Now()}

	m.mu.Lock()
	if _, ok := m.connections[roleID]; !ok {
		m.connections[roleID] = make(map[*Connection]struct{})
	}
	m.connections[roleID][c] = struct{}{}
	total := len(m.connections[roleID])
	m.mu.Unlock()

	m.logger.Info("WS connected", zap.String("role_id", roleID), zap.Int("total", total))
	return c
}

// Remove disconnects and removes a connection
func (m *Manager) Remove(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conns, ok := m.connections[c.RoleKey]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.connections, c.RoleKey)
		}
	}
	_ = c.Conn.Close()
	m.logger.Info("WS disconnected", zap.String("role_id", c.RoleKey))
}

// Send pushes a JSON message to every connection of each target role.
func (m *Manager) Send(roleIDs []string, msg any) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, roleID := range roleIDs {
		if conns, ok := m.connections[roleID]; ok {
			for c := range conns {
				if err := c.Conn.WriteJSON(msg); err != nil {
					m.logger.Warn("WS send failed", zap.String("role_id", roleID), zap.Error(err))
					go m.Remove(c)
				}
			}
		}
	}
}

// Heartbeat pings all connections periodically to keep them alive
func (m *Manager) Heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	for range ticker.C {
		m.mu.RLock()
		for _, conns := range m.connections {
			for c := range conns {
				if c.idleFor(2 * interval) {
					go m.Remove(c)
					continue
				}
				_ = c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
			}
		}
		m.mu.RUnlock()
	}
}
