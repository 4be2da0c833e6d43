package wshandler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/pkg/notifier/ws"
)

const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced at the gateway.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub    *ws.Manager
	logger *zap.Logger
}

func NewWSHandler(hub *ws.Manager, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// HandleNotifications upgrades the connection and registers it under the
// caller's role id so the in-app consumer can push live records.
func (h *WSHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	roleID := r.Header.Get("x-role-id")
	if roleID == "" {
		http.Error(w, "missing role", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WS upgrade failed", zap.Error(err))
		return
	}

	c := h.hub.Add(roleID, conn)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		c.Touch()
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader loop only drains control frames; the connection is push-only.
	go func() {
		defer h.hub.Remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
