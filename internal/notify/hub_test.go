package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywallet/internal/core"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHubRoutesByOwner(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	owner1 := dial(t, srv, "/?owner_id=1")
	owner2 := dial(t, srv, "/?owner_id=2")
	everyone := dial(t, srv, "/")
	require.Eventually(t, func() bool { return hub.Sessions() == 3 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), budgetAlert()))

	msg := read(t, owner1)
	assert.Equal(t, core.AlertTypeBudget, msg["type"])
	data := msg["data"].(map[string]any)
	assert.Equal(t, float64(105), data["spent"])

	assert.Equal(t, core.AlertTypeBudget, read(t, everyone)["type"])
	expectSilence(t, owner2)
}

func TestHubBroadcastsUnaddressedEvents(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	a := dial(t, srv, "/?owner_id=1")
	b := dial(t, srv, "/?owner_id=2")
	require.Eventually(t, func() bool { return hub.Sessions() == 2 }, 2*time.Second, 10*time.Millisecond)

	ev := core.AlertEvent{Type: core.AlertTypeTest, Payload: map[string]any{"message": "hello"}}
	require.NoError(t, hub.Publish(context.Background(), ev))

	assert.Equal(t, "TEST", read(t, a)["type"])
	assert.Equal(t, "TEST", read(t, b)["type"])
}

func TestHubRejectsBadOwner(t *testing.T) {
	hub := NewHub(nil)
	t.Cleanup(func() { hub.Close() })

	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/alerts?owner_id=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHubPublishAfterClose(t *testing.T) {
	hub := NewHub(nil)
	require.NoError(t, hub.Close())
	assert.Error(t, hub.Publish(context.Background(), budgetAlert()))
}
