package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jkoster/checkersgame-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second
	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 25 * time.Second
	// Maximum inbound message size
	maxMessageSize = 4096
	// Outbound buffer per connection
	sendBufferSize = 64
)

// Client is one websocket connection. Its identity is empty until the peer
// sends set-nickname.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	playerID    model.PlayerID
	lastReadErr error

	closeOnce sync.Once
	logger    *slog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
	}
}

// run starts the write pump and blocks on the read pump until the
// connection drops
func (c *Client) run() {
	c.hub.metrics.ActiveConnections.Inc()
	defer c.hub.metrics.ActiveConnections.Dec()

	go c.writePump()
	c.readPump()
}

// readPump reads messages in receipt order and hands each to the hub. On
// exit it classifies the drop: a clean close frame is a genuine disconnect,
// anything else is treated as a transient transport error that the presence
// layer re-checks after a short probe.
func (c *Client) readPump() {
	defer func() {
		transient := true
		if err := c.lastReadErr; err != nil &&
			websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			transient = false
		}
		c.hub.unregister(c, transient)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.lastReadErr = err
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("connection dropped",
					slog.String("player_id", string(c.playerID)),
					slog.String("error", err.Error()))
			}
			return
		}
		c.hub.dispatch(c, raw)
	}
}

// writePump flushes outbound events and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// close tears the connection down exactly once
func (c *Client) close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}
