package realtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Client is one websocket connection belonging to one authenticated user.
type Client struct {
	hub    *Hub
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte

	// onClose runs once when the reader exits, before the hub drops the
	// client. The ws handler uses it to tear down the feed session.
	onClose func()
}

func NewClient(hub *Hub, userID uuid.UUID, conn *websocket.Conn, onClose func()) *Client {
	return &Client{
		hub:     hub,
		userID:  userID,
		conn:    conn,
		send:    make(chan []byte, 64),
		onClose: onClose,
	}
}

// Send queues a message for this connection; full buffers drop the message,
// the write pump's ping/pong handling will eventually reap a dead peer.
func (c *Client) Send(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// ReadPump discards inbound frames (the dashboard socket is push-only) and
// exists to detect disconnects and keep pong deadlines fresh.
func (c *Client) ReadPump() {
	defer func() {
		if c.onClose != nil {
			c.onClose()
		}
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
