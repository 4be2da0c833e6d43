package wshandler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/pkg/notifier/ws"
)

func dialTestHub(t *testing.T, hub *ws.Manager) *websocket.Conn {
	t.Helper()

	h := NewWSHandler(hub, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(h.HandleNotifications))
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set("x-role-id", "role-1")
	client, _, err := websocket.DefaultDialer.Dial(
		"ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// A connected client that keeps answering pings must survive several
// heartbeat rounds: the pong handler refreshes liveness on every pong.
func TestHeartbeatKeepsPongingConnection(t *testing.T) {
	hub := ws.NewManager(zap.NewNop())
	client := dialTestHub(t, hub)

	received := make(chan map[string]string, 1)
	go func() {
		for {
			var msg map[string]string
			if err := client.ReadJSON(&msg); err != nil {
				return
			}
			received <- msg
		}
	}()

	go hub.Heartbeat(50 * time.Millisecond)
	time.Sleep(400 * time.Millisecond)

	hub.Send([]string{"role-1"}, map[string]string{"kind": "still-here"})
	select {
	case msg := <-received:
		assert.Equal(t, "still-here", msg["kind"])
	case <-time.After(time.Second):
		t.Fatal("connection was evicted while still answering pings")
	}
}

func TestHeartbeatEvictsSilentConnection(t *testing.T) {
	hub := ws.NewManager(zap.NewNop())
	client := dialTestHub(t, hub)

	// Swallow pings without replying so liveness is never refreshed.
	client.SetPingHandler(func(string) error { return nil })

	go hub.Heartbeat(50 * time.Millisecond)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	start := time.Now()
	_, _, err := client.ReadMessage()
	require.Error(t, err)
	assert.Less(t, time.Since(start), 1500*time.Millisecond,
		"silent connection should be closed well before the read deadline")
}
