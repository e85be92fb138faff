package protocol

import "github.com/vmihailenco/msgpack/v5"

// Message is the envelope for every websocket frame, client to server
// and back. Frames are binary msgpack so chunk bytes ride without an
// encoding step.
type Message struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload,omitempty"`
}

// Message type constants. Names follow the room:/transfer: catalog of
// the wire protocol.
const (
	MessageRoomCreate = "room:create"
	MessageRoomJoin   = "room:join"
	MessageRoomLeave  = "room:leave"

	MessageRoomJoined  = "room:joined"
	MessageRoomUpdated = "room:updated"
	MessageRoomLeft    = "room:left"
	MessageRoomError   = "room:error"

	MessageTransferText         = "transfer:text"
	MessageTransferStart        = "transfer:start"
	MessageTransferReceived     = "transfer:received"
	MessageTransferMetadataSent = "transfer:metadata_sent"
	MessageTransferChunk        = "transfer:chunk"
	MessageTransferAck          = "transfer:ack"
	MessageTransferProgress     = "transfer:progress"
	MessageTransferFile         = "transfer:file"
	MessageTransferComplete     = "transfer:complete"
)

// RoomRequest is the payload for room:create and room:join.
type RoomRequest struct {
	Code   string `msgpack:"code"`
	Device Device `msgpack:"device"`
}

// RoomJoinedPayload is sent to the caller after a successful create or join.
type RoomJoinedPayload struct {
	Room   Room `msgpack:"room"`
	IsHost bool `msgpack:"isHost"`
}

// RoomUpdatedPayload is broadcast whenever membership or host changes.
type RoomUpdatedPayload struct {
	Room Room `msgpack:"room"`
}

// RoomErrorPayload is sent only to a caller whose create/join failed.
type RoomErrorPayload struct {
	Message string `msgpack:"message"`
}

// TransferSendPayload is the payload for transfer:text and
// transfer:start; the receiver sees it as transfer:received.
type TransferSendPayload struct {
	Transfer   Transfer `msgpack:"transfer"`
	ReceiverID string   `msgpack:"receiverId"`
}

// MetadataSentPayload acknowledges to the sender that file metadata
// reached the relay. It unblocks chunk sending but is not a chunk ack.
type MetadataSentPayload struct {
	TransferID string `msgpack:"transferId"`
}

// ChunkPayload carries one slice of a file transfer. ChunkNumber is
// 1-based; offsets are contiguous and non-overlapping.
type ChunkPayload struct {
	TransferID  string `msgpack:"transferId"`
	ReceiverID  string `msgpack:"receiverId,omitempty"`
	Chunk       []byte `msgpack:"chunk"`
	Offset      int64  `msgpack:"offset"`
	Total       int64  `msgpack:"total"`
	ChunkNumber int    `msgpack:"chunkNumber"`
	TotalChunks int    `msgpack:"totalChunks"`
}

// ChunkAckPayload is returned to the sender once the relay has
// forwarded the chunk. It is the flow-control signal the sender's
// coordinator waits on.
type ChunkAckPayload struct {
	TransferID  string `msgpack:"transferId"`
	ChunkNumber int    `msgpack:"chunkNumber"`
}

// ProgressPayload is emitted to both ends of a transfer.
type ProgressPayload struct {
	ID       string `msgpack:"id"`
	Progress int    `msgpack:"progress"`
}

// FilePayload is the inline path for payloads that fit in a single
// chunk: the whole file in one message.
type FilePayload struct {
	TransferID string `msgpack:"transferId"`
	ReceiverID string `msgpack:"receiverId,omitempty"`
	FileData   []byte `msgpack:"fileData"`
	FileName   string `msgpack:"fileName"`
	FileType   string `msgpack:"fileType"`
}

// CompletePayload notifies the receiver that the last chunk was sent.
type CompletePayload struct {
	TransferID string `msgpack:"transferId"`
	ReceiverID string `msgpack:"receiverId,omitempty"`
}

// NewMessage creates a Message with the given type and payload.
func NewMessage(t string, payload any) (*Message, error) {
	if payload == nil {
		return &Message{Type: t}, nil
	}
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: t, Payload: b}, nil
}

// MustMessage is NewMessage for payload types that cannot fail to
// marshal. It panics on error and exists for internal constants-only
// payloads built by the server.
func MustMessage(t string, payload any) *Message {
	m, err := NewMessage(t, payload)
	if err != nil {
		panic(err)
	}
	return m
}

// DecodePayload decodes the message payload into v.
func (m *Message) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

// Encode marshals the full envelope for a websocket frame.
func (m *Message) Encode() ([]byte, error) {
	return msgpack.Marshal(m)
}

// Decode unmarshals a websocket frame into an envelope.
func Decode(data []byte) (*Message, error) {
	var m Message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
