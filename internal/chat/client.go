package chat

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatrelay/internal/models"
)

// Client is one live session: a websocket connection plus the room and
// username assigned to it by Join. Room and Username are mutated only by the
// Coordinator while handling events from this client's own read loop.
type Client struct {
	ID   string
	Conn *websocket.Conn

	Username string
	Room     *Room

	mu   sync.Mutex
	hook func(models.WSFrame)
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{ID: uuid.NewString(), Conn: conn}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.WSFrame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(frame models.WSFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.Conn == nil {
		return
	}
	_ = c.Conn.WriteJSON(frame)
}
