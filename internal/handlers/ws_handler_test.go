package handlers

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

	"chatrelay/internal/chat"
	"chatrelay/internal/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	coordinator := chat.NewCoordinator(zap.NewNop(), chat.NewRegistry(), nil, nil, time.Second)
	h := NewHandlers(zap.NewNop(), coordinator)

	server := httptest.NewServer(http.HandlerFunc(h.ChatWS))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil drains frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) models.WSFrame {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var f models.WSFrame
		require.NoError(t, conn.ReadJSON(&f), "waiting for %q", eventType)
		if f.Type == eventType {
			return f
		}
	}
}

func join(t *testing.T, conn *websocket.Conn, room, username string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(models.WSFrame{
		Type: models.EventJoinRoom,
		Data: models.JoinRequest{RoomID: room, Username: username},
	}))
}

func TestJoinFlowOverWebSocket(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	join(t, conn, " lobby ", "  bob ")

	f := readUntil(t, conn, models.EventUsernameSet)
	assert.Equal(t, "bob", f.Data)
	f = readUntil(t, conn, models.EventRoomSet)
	assert.Equal(t, "lobby", f.Data)
	f = readUntil(t, conn, models.EventRoomMembers)
	assert.Equal(t, []interface{}{"bob"}, f.Data)
}

func TestChatBroadcastOverWebSocket(t *testing.T) {
	server := newTestServer(t)
	alice := dial(t, server)
	bob := dial(t, server)

	join(t, alice, "lobby", "alice")
	readUntil(t, alice, models.EventRoomMembers)
	join(t, bob, "lobby", "bob")
	readUntil(t, bob, models.EventRoomMembers)
	readUntil(t, alice, models.EventMemberJoined)

	require.NoError(t, bob.WriteJSON(models.WSFrame{
		Type: models.EventChatMessage,
		Data: "hello everyone",
	}))

	for _, conn := range []*websocket.Conn{alice, bob} {
		f := readUntil(t, conn, models.EventChatMessage)
		msg, ok := f.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "hello everyone", msg["content"])
		assert.Equal(t, "bob", msg["username"])
		assert.NotEmpty(t, msg["id"])
	}
}

func TestDisconnectIsImplicitLeave(t *testing.T) {
	server := newTestServer(t)
	alice := dial(t, server)
	bob := dial(t, server)

	join(t, alice, "lobby", "alice")
	readUntil(t, alice, models.EventRoomMembers)
	join(t, bob, "lobby", "bob")
	readUntil(t, alice, models.EventMemberJoined)

	require.NoError(t, bob.Close())

	f := readUntil(t, alice, models.EventMemberLeft)
	assert.Equal(t, "bob", f.Data)
	f = readUntil(t, alice, models.EventMemberCount)
	assert.Equal(t, float64(1), f.Data)
}

func TestLinkPreviewRepliesToSenderWithFallback(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	join(t, conn, "lobby", "alice")
	readUntil(t, conn, models.EventRoomMembers)

	require.NoError(t, conn.WriteJSON(models.WSFrame{
		Type: models.EventLinkPreview,
		Data: models.LinkPreviewRequest{URL: "http://127.0.0.1:1/x", TempID: "tmp-1"},
	}))

	f := readUntil(t, conn, models.EventLinkPreview)
	data, ok := f.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "tmp-1", data["tempId"])
	preview, ok := data["preview"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "http://127.0.0.1:1/x", preview["title"], "failed fetch falls back to the URL")
}

func TestRelayEventsDroppedWhenUnjoined(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	// None of these may produce a reply before a join happens.
	require.NoError(t, conn.WriteJSON(models.WSFrame{Type: models.EventChatMessage, Data: "hi"}))
	require.NoError(t, conn.WriteJSON(models.WSFrame{Type: models.EventTypingStart}))
	require.NoError(t, conn.WriteJSON(models.WSFrame{Type: "bogus-type"}))

	join(t, conn, "lobby", "alice")

	// The first reply on the wire must be the join ack, proving the
	// pre-join events produced nothing.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f models.WSFrame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, models.EventUsernameSet, f.Type)
	assert.Equal(t, "alice", f.Data)
}
