// Package client is the endpoint side of the relay: one websocket
// connection bound to a device identity, with room operations and
// transfer send/receive on top.
package client

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/transfer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024

	replyTimeout = 10 * time.Second
)

// Options configure a client before dialing.
type Options struct {
	// DeviceName defaults to the hostname.
	DeviceName string

	// DeviceKind selects the chunk size tier; defaults to desktop.
	DeviceKind protocol.DeviceKind

	// AckTimeout and MaxRetries tune the chunk protocol. Zero values
	// use the transfer package defaults.
	AckTimeout time.Duration
	MaxRetries int
}

// Client is one endpoint connection to the relay server.
type Client struct {
	conn   *websocket.Conn
	device protocol.Device
	opts   Options

	outgoing chan *protocol.Message
	events   chan Event
	done     chan struct{}

	closeOnce sync.Once

	reassembler *transfer.Reassembler

	mu           sync.Mutex
	room         *protocol.Room
	isHost       bool
	pendingReply chan roomReply
	coordinators map[string]*transfer.Coordinator
	cancels      map[string]context.CancelFunc
	seen         map[string]bool
}

type roomReply struct {
	room   protocol.Room
	isHost bool
	left   bool
	errMsg string
}

// Dial connects to the relay at serverURL and starts the connection
// pumps. The device identity is generated here and lives as long as
// the client.
func Dial(serverURL string, opts Options) (*Client, error) {
	if opts.DeviceName == "" {
		if host, err := os.Hostname(); err == nil {
			opts.DeviceName = host
		} else if opts.DeviceKind == protocol.DeviceMobile {
			opts.DeviceName = "Mobile Device"
		} else {
			opts.DeviceName = "Desktop Device"
		}
	}
	if opts.DeviceKind == "" {
		opts.DeviceKind = protocol.DeviceDesktop
	}

	conn, _, err := websocket.DefaultDialer.Dial(serverURL, nil)
	if err != nil {
		return nil, transfer.NewError("connect", err)
	}

	c := &Client{
		conn: conn,
		device: protocol.Device{
			ID:   uuid.NewString(),
			Name: opts.DeviceName,
			Kind: opts.DeviceKind,
		},
		opts:         opts,
		outgoing:     make(chan *protocol.Message, 16),
		events:       make(chan Event, 256),
		done:         make(chan struct{}),
		reassembler:  transfer.NewReassembler(),
		coordinators: make(map[string]*transfer.Coordinator),
		cancels:      make(map[string]context.CancelFunc),
		seen:         make(map[string]bool),
	}

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return c, nil
}

// Device returns this endpoint's device identity.
func (c *Client) Device() protocol.Device {
	return c.device
}

// Room returns the current room snapshot, if any.
func (c *Client) Room() (protocol.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil {
		return protocol.Room{}, false
	}
	return *c.room, true
}

// IsHost reports whether this device currently hosts its room.
func (c *Client) IsHost() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isHost
}

// Events is the stream of room and transfer notifications.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Done is closed when the connection is torn down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close tears the connection down. All in-flight transfers are
// aborted without notifying their receivers.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.teardown()
		c.conn.Close()
	})
}

// Send encodes and queues one message. It satisfies transfer.Conn so
// coordinators can write through the client.
func (c *Client) Send(msg *protocol.Message) error {
	select {
	case c.outgoing <- msg:
		return nil
	case <-c.done:
		return transfer.NewError("send", websocket.ErrCloseSent)
	}
}

func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			slog.Debug("dropping undecodable frame", "err", err)
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
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

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// teardown aborts all in-flight transfers and discards every buffer,
// the same cleanup whether the room was left or the connection died.
func (c *Client) teardown() {
	c.mu.Lock()
	cancels := c.cancels
	c.cancels = make(map[string]context.CancelFunc)
	c.room = nil
	c.isHost = false
	c.seen = make(map[string]bool)
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	c.reassembler.Reset()
}

func (c *Client) emit(e Event) {
	select {
	case c.events <- e:
	default:
		slog.Warn("event dropped, consumer backlogged", "type", e.Type)
	}
}
