package relay

import (
	"log/slog"
	"math"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/session"
)

// Dispatcher is the stateless forwarding layer. For every transfer
// message it resolves the logical receiver id to a live connection in
// the sender's room and forwards the payload, never keeping a copy.
type Dispatcher struct {
	sessions *session.Manager
	log      *slog.Logger
}

func NewDispatcher(sessions *session.Manager, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{sessions: sessions, log: log}
}

// Relay forwards one transfer message from sender. Unroutable messages
// are dropped silently: a sender outside a room has no valid target,
// and a missing receiver is treated as a race with a leave rather than
// an error.
func (d *Dispatcher) Relay(sender *session.Session, msg *protocol.Message) {
	if !sender.InRoom() {
		d.log.Debug("relay without room", "type", msg.Type)
		return
	}

	switch msg.Type {
	case protocol.MessageTransferText:
		d.relayTransfer(sender, msg, false)
	case protocol.MessageTransferStart:
		d.relayTransfer(sender, msg, true)
	case protocol.MessageTransferChunk:
		d.relayChunk(sender, msg)
	case protocol.MessageTransferFile:
		d.relayFile(sender, msg)
	case protocol.MessageTransferComplete:
		d.relayComplete(sender, msg)
	}
}

// resolve maps a receiver device id to its live session within the
// sender's room. The self check is a safety net against malformed
// client state during room propagation.
func (d *Dispatcher) resolve(sender *session.Session, receiverID string) (*session.Session, bool) {
	receiver, ok := d.sessions.ByDevice(receiverID)
	if !ok || receiver.RoomCode != sender.RoomCode {
		d.log.Debug("receiver not found in room", "receiver", receiverID, "room", sender.RoomCode)
		return nil, false
	}
	if receiver.ID == sender.ID {
		d.log.Debug("dropping self-transfer", "device", receiverID)
		return nil, false
	}
	return receiver, true
}

// relayTransfer handles transfer:text and transfer:start. Both carry a
// whole Transfer; the receiver sees it as transfer:received. For file
// metadata the sender additionally gets transfer:metadata_sent, the
// signal that unblocks chunk sending.
func (d *Dispatcher) relayTransfer(sender *session.Session, msg *protocol.Message, ackMetadata bool) {
	var p protocol.TransferSendPayload
	if err := msg.DecodePayload(&p); err != nil {
		d.log.Debug("bad transfer payload", "type", msg.Type, "err", err)
		return
	}

	receiver, ok := d.resolve(sender, p.ReceiverID)
	if !ok {
		return
	}

	out, err := protocol.NewMessage(protocol.MessageTransferReceived, p.Transfer)
	if err != nil {
		d.log.Error("encode transfer:received", "err", err)
		return
	}
	receiver.Conn.Enqueue(out)

	if ackMetadata {
		sender.Conn.Enqueue(protocol.MustMessage(protocol.MessageTransferMetadataSent, protocol.MetadataSentPayload{
			TransferID: p.Transfer.ID,
		}))
	}
}

// relayChunk forwards one chunk, emits progress to both ends, and only
// after the forward succeeded returns the flow-control ack the sender
// is waiting on.
func (d *Dispatcher) relayChunk(sender *session.Session, msg *protocol.Message) {
	var p protocol.ChunkPayload
	if err := msg.DecodePayload(&p); err != nil {
		d.log.Debug("bad chunk payload", "err", err)
		return
	}

	receiver, ok := d.resolve(sender, p.ReceiverID)
	if !ok {
		return
	}

	if !receiver.Conn.Enqueue(msg) {
		// Receiver queue full: withhold the ack so the sender retries.
		d.log.Warn("chunk dropped, receiver backlogged", "transfer", p.TransferID, "chunk", p.ChunkNumber)
		return
	}

	progress := roundProgress(p.ChunkNumber, p.TotalChunks)
	d.emitProgress(sender, receiver, p.TransferID, progress)

	sender.Conn.Enqueue(protocol.MustMessage(protocol.MessageTransferAck, protocol.ChunkAckPayload{
		TransferID:  p.TransferID,
		ChunkNumber: p.ChunkNumber,
	}))
}

// relayFile forwards the inline whole-file path and jumps progress to
// 100 on both ends.
func (d *Dispatcher) relayFile(sender *session.Session, msg *protocol.Message) {
	var p protocol.FilePayload
	if err := msg.DecodePayload(&p); err != nil {
		d.log.Debug("bad file payload", "err", err)
		return
	}

	receiver, ok := d.resolve(sender, p.ReceiverID)
	if !ok {
		return
	}

	receiver.Conn.Enqueue(msg)
	d.emitProgress(sender, receiver, p.TransferID, 100)
}

func (d *Dispatcher) relayComplete(sender *session.Session, msg *protocol.Message) {
	var p protocol.CompletePayload
	if err := msg.DecodePayload(&p); err != nil {
		d.log.Debug("bad complete payload", "err", err)
		return
	}

	receiver, ok := d.resolve(sender, p.ReceiverID)
	if !ok {
		return
	}

	receiver.Conn.Enqueue(msg)
	d.emitProgress(sender, receiver, p.TransferID, 100)
}

func (d *Dispatcher) emitProgress(sender, receiver *session.Session, transferID string, progress int) {
	msg := protocol.MustMessage(protocol.MessageTransferProgress, protocol.ProgressPayload{
		ID:       transferID,
		Progress: progress,
	})
	sender.Conn.Enqueue(msg)
	receiver.Conn.Enqueue(msg)
}

func roundProgress(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
