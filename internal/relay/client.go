package relay

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Chunks top out at 512 KiB;
	// the rest is envelope overhead.
	maxMessageSize = 1024 * 1024

	// Outbound queue depth per connection.
	sendQueueSize = 256
)

// Client wraps a single server-side websocket connection. All reads
// happen on ReadPump's goroutine and all writes on WritePump's, so the
// connection never sees concurrent access.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan *protocol.Message

	// SessionID is assigned by the hub on register.
	SessionID string
}

// Enqueue places a message on the client's outbound queue without
// blocking. A full queue drops the message and reports false; a slow
// consumer must not stall the hub.
func (c *Client) Enqueue(msg *protocol.Message) bool {
	defer func() {
		// Send on a closed channel is possible during teardown races;
		// treat it as a failed enqueue.
		recover()
	}()
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump pumps messages from the websocket connection to the hub.
// It runs in a per-connection goroutine and is the sole reader.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("read error", "err", err)
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			slog.Debug("dropping undecodable frame", "err", err)
			continue
		}

		c.hub.inbound <- &inboundMessage{client: c, msg: msg}
	}
}

// WritePump pumps messages from the hub to the websocket connection
// and keeps the connection alive with periodic pings. It runs in a
// per-connection goroutine and is the sole writer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := msg.Encode()
			if err != nil {
				slog.Error("encode outbound message", "type", msg.Type, "err", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
