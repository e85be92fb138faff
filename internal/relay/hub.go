// Package relay is the real-time core of the server: the hub owning
// room lifecycle and the dispatcher forwarding transfer traffic.
// Nothing in this package persists a payload.
package relay

import (
	"context"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/room"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/session"
)

type inboundMessage struct {
	client *Client
	msg    *protocol.Message
}

// Hub is the single-writer task that owns all room and session
// mutations. Connection goroutines hand it work over channels, so
// create/join/leave sequences are serialized without per-message
// locking.
type Hub struct {
	registry   *room.Registry
	sessions   *session.Manager
	dispatcher *Dispatcher
	log        *slog.Logger

	register   chan *Client
	unregister chan *Client
	inbound    chan *inboundMessage
}

// NewHub creates a hub around the given registry. Pass a nil logger to
// use the default.
func NewHub(registry *room.Registry, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	sessions := session.NewManager()
	return &Hub{
		registry:   registry,
		sessions:   sessions,
		dispatcher: NewDispatcher(sessions, log),
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *inboundMessage, 64),
	}
}

// Attach registers a fresh websocket connection with the hub and
// starts its pumps.
func (h *Hub) Attach(conn *websocket.Conn) {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan *protocol.Message, sendQueueSize),
	}
	h.register <- client
	go client.WritePump()
	go client.ReadPump()
}

// Run is the hub's main loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			s := h.sessions.Register(client)
			client.SessionID = s.ID
			h.log.Debug("client registered", "session", s.ID)

		case client := <-h.unregister:
			h.handleDisconnect(client)

		case in := <-h.inbound:
			h.handleMessage(in.client, in.msg)
		}
	}
}

func (h *Hub) handleMessage(client *Client, msg *protocol.Message) {
	sess, ok := h.sessions.Get(client.SessionID)
	if !ok {
		return
	}

	switch msg.Type {
	case protocol.MessageRoomCreate:
		h.handleCreate(sess, msg)
	case protocol.MessageRoomJoin:
		h.handleJoin(sess, msg)
	case protocol.MessageRoomLeave:
		h.handleLeave(sess)

	case protocol.MessageTransferText,
		protocol.MessageTransferStart,
		protocol.MessageTransferChunk,
		protocol.MessageTransferFile,
		protocol.MessageTransferComplete:
		h.dispatcher.Relay(sess, msg)

	default:
		h.log.Debug("unknown message type", "type", msg.Type)
	}
}

func (h *Hub) handleCreate(sess *session.Session, msg *protocol.Message) {
	var req protocol.RoomRequest
	if err := msg.DecodePayload(&req); err != nil {
		h.log.Debug("bad room:create payload", "err", err)
		return
	}

	created, err := h.registry.Create(req.Code, req.Device)
	if err != nil {
		h.sendRoomError(sess, err)
		return
	}

	// The registry set the host flag; bind the authoritative copy.
	device, _ := created.Device(req.Device.ID)
	h.sessions.Bind(sess.ID, device, created.Code)
	h.log.Info("room created", "code", created.Code, "device", device.ID)

	sess.Conn.Enqueue(protocol.MustMessage(protocol.MessageRoomJoined, protocol.RoomJoinedPayload{
		Room:   created,
		IsHost: true,
	}))
	h.broadcastUpdated(created, sess.ID)
}

func (h *Hub) handleJoin(sess *session.Session, msg *protocol.Message) {
	var req protocol.RoomRequest
	if err := msg.DecodePayload(&req); err != nil {
		h.log.Debug("bad room:join payload", "err", err)
		return
	}

	joined, err := h.registry.Join(req.Code, req.Device)
	if err != nil {
		h.sendRoomError(sess, err)
		return
	}

	device, _ := joined.Device(req.Device.ID)
	h.sessions.Bind(sess.ID, device, joined.Code)
	h.log.Info("room joined", "code", joined.Code, "device", device.ID)

	sess.Conn.Enqueue(protocol.MustMessage(protocol.MessageRoomJoined, protocol.RoomJoinedPayload{
		Room:   joined,
		IsHost: false,
	}))
	h.broadcastUpdated(joined, sess.ID)
}

// handleLeave runs an explicit room:leave: the session stays alive and
// may create or join another room afterwards.
func (h *Hub) handleLeave(sess *session.Session) {
	if !sess.InRoom() {
		return
	}

	updated, ok := h.registry.Leave(sess.RoomCode, sess.Device.ID)
	code := sess.RoomCode
	h.sessions.Unbind(sess.ID)

	if ok && len(updated.Devices) > 0 {
		h.broadcastUpdated(updated, "")
	}
	h.log.Info("room left", "code", code)

	sess.Conn.Enqueue(&protocol.Message{Type: protocol.MessageRoomLeft})
}

// handleDisconnect runs the same membership cleanup as an explicit
// leave, exactly once, then destroys the session.
func (h *Hub) handleDisconnect(client *Client) {
	sess, ok := h.sessions.Remove(client.SessionID)
	if !ok {
		return
	}
	h.log.Debug("client unregistered", "session", sess.ID)

	if sess.InRoom() {
		updated, left := h.registry.Leave(sess.RoomCode, sess.Device.ID)
		if left && len(updated.Devices) > 0 {
			h.broadcastUpdated(updated, "")
		}
	}

	close(client.send)
}

// broadcastUpdated sends room:updated to every member except the
// session with the given id.
func (h *Hub) broadcastUpdated(updated protocol.Room, exceptSessionID string) {
	msg := protocol.MustMessage(protocol.MessageRoomUpdated, protocol.RoomUpdatedPayload{Room: updated})
	for _, d := range updated.Devices {
		member, ok := h.sessions.ByDevice(d.ID)
		if !ok || member.ID == exceptSessionID {
			continue
		}
		member.Conn.Enqueue(msg)
	}
}

func (h *Hub) sendRoomError(sess *session.Session, err error) {
	h.log.Debug("room request failed", "err", err)
	sess.Conn.Enqueue(protocol.MustMessage(protocol.MessageRoomError, protocol.RoomErrorPayload{
		Message: err.Error(),
	}))
}
