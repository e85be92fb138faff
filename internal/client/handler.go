package client

import (
	"log/slog"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/transfer"
)

// handle demuxes one inbound message: replies to pending room
// operations, acks to their coordinators, chunks to the reassembler,
// and everything user-visible onto the events channel.
func (c *Client) handle(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MessageRoomJoined:
		var p protocol.RoomJoinedPayload
		if err := msg.DecodePayload(&p); err != nil {
			return
		}
		c.mu.Lock()
		c.room = &p.Room
		c.isHost = p.IsHost
		reply := c.pendingReply
		c.pendingReply = nil
		c.mu.Unlock()
		deliver(reply, roomReply{room: p.Room, isHost: p.IsHost})

	case protocol.MessageRoomError:
		var p protocol.RoomErrorPayload
		if err := msg.DecodePayload(&p); err != nil {
			return
		}
		c.mu.Lock()
		reply := c.pendingReply
		c.pendingReply = nil
		c.mu.Unlock()
		deliver(reply, roomReply{errMsg: p.Message})

	case protocol.MessageRoomUpdated:
		var p protocol.RoomUpdatedPayload
		if err := msg.DecodePayload(&p); err != nil {
			return
		}
		c.mu.Lock()
		c.room = &p.Room
		if d, ok := p.Room.Device(c.device.ID); ok {
			c.isHost = d.IsHost
		}
		c.mu.Unlock()
		c.emit(Event{Type: EventRoomUpdated, Room: p.Room})

	case protocol.MessageRoomLeft:
		c.mu.Lock()
		reply := c.pendingReply
		c.pendingReply = nil
		c.mu.Unlock()
		c.teardown()
		deliver(reply, roomReply{left: true})
		c.emit(Event{Type: EventRoomLeft})

	case protocol.MessageTransferReceived:
		var t protocol.Transfer
		if err := msg.DecodePayload(&t); err != nil {
			return
		}
		c.mu.Lock()
		if c.seen[t.ID] {
			c.mu.Unlock()
			slog.Debug("duplicate transfer, skipping", "id", t.ID)
			return
		}
		c.seen[t.ID] = true
		c.mu.Unlock()

		c.reassembler.Track(t)
		c.emit(Event{Type: EventTransferReceived, Transfer: t})

	case protocol.MessageTransferMetadataSent:
		var p protocol.MetadataSentPayload
		if err := msg.DecodePayload(&p); err != nil {
			return
		}
		if coord, ok := c.coordinator(p.TransferID); ok {
			coord.MetadataDelivered()
		}

	case protocol.MessageTransferAck:
		var p protocol.ChunkAckPayload
		if err := msg.DecodePayload(&p); err != nil {
			return
		}
		if coord, ok := c.coordinator(p.TransferID); ok {
			coord.Ack(p.ChunkNumber)
		}

	case protocol.MessageTransferProgress:
		var p protocol.ProgressPayload
		if err := msg.DecodePayload(&p); err != nil {
			return
		}
		c.emit(Event{Type: EventTransferProgress, TransferID: p.ID, Progress: p.Progress})

	case protocol.MessageTransferChunk:
		var p protocol.ChunkPayload
		if err := msg.DecodePayload(&p); err != nil {
			return
		}
		if _, err := c.reassembler.HandleChunk(p); err != nil {
			c.emit(Event{Type: EventTransferFailed, TransferID: p.TransferID, Err: err})
		}

	case protocol.MessageTransferFile:
		var p protocol.FilePayload
		if err := msg.DecodePayload(&p); err != nil {
			return
		}
		if err := c.reassembler.HandleFile(p); err != nil {
			c.emit(Event{Type: EventTransferFailed, TransferID: p.TransferID, Err: err})
			return
		}
		c.emit(Event{Type: EventTransferComplete, TransferID: p.TransferID})

	case protocol.MessageTransferComplete:
		var p protocol.CompletePayload
		if err := msg.DecodePayload(&p); err != nil {
			return
		}
		if _, ok := c.reassembler.Complete(p.TransferID); ok {
			c.emit(Event{Type: EventTransferComplete, TransferID: p.TransferID})
		}

	default:
		slog.Debug("unknown message type", "type", msg.Type)
	}
}

func (c *Client) coordinator(transferID string) (*transfer.Coordinator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	coord, ok := c.coordinators[transferID]
	return coord, ok
}

func deliver(ch chan roomReply, r roomReply) {
	if ch == nil {
		return
	}
	select {
	case ch <- r:
	default:
	}
}
