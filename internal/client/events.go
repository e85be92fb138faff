package client

import "github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"

// EventType tags a client event.
type EventType string

const (
	// EventRoomUpdated fires whenever membership or host changes.
	EventRoomUpdated EventType = "room:updated"

	// EventRoomLeft fires when this endpoint has left its room.
	EventRoomLeft EventType = "room:left"

	// EventTransferReceived fires when a text, link, or file metadata
	// transfer arrives.
	EventTransferReceived EventType = "transfer:received"

	// EventTransferProgress carries relay-reported progress for either
	// direction of a transfer.
	EventTransferProgress EventType = "transfer:progress"

	// EventTransferComplete fires when an inbound file has been fully
	// reassembled and is ready to take.
	EventTransferComplete EventType = "transfer:complete"

	// EventTransferFailed fires when an inbound transfer was rejected,
	// e.g. a chunk past the declared size.
	EventTransferFailed EventType = "transfer:failed"
)

// Event is one notification from the relay connection.
type Event struct {
	Type       EventType
	Room       protocol.Room
	Transfer   protocol.Transfer
	TransferID string
	Progress   int
	Err        error
}
