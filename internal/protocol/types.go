package protocol

import "time"

// DeviceKind classifies a device for chunk sizing. Mobile devices get
// smaller chunks to limit memory pressure.
type DeviceKind string

const (
	DeviceDesktop DeviceKind = "desktop"
	DeviceMobile  DeviceKind = "mobile"
)

// Device is one endpoint in a room. The id is generated by the client
// that owns the device and is opaque to the server.
type Device struct {
	ID     string     `msgpack:"id"`
	Name   string     `msgpack:"name"`
	Kind   DeviceKind `msgpack:"kind"`
	IsHost bool       `msgpack:"isHost"`
}

// Room is a code-addressed group of devices. Devices keep insertion
// order; HostID always names a current member.
type Room struct {
	Code      string    `msgpack:"code"`
	Devices   []Device  `msgpack:"devices"`
	HostID    string    `msgpack:"hostId"`
	CreatedAt time.Time `msgpack:"createdAt"`
}

// Device returns the member with the given id, if present.
func (r *Room) Device(id string) (Device, bool) {
	for _, d := range r.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// TransferKind is the tagged variant over the three transfer shapes.
// It is decided once when the transfer is created and carried through
// every message instead of being sniffed from payload fields.
type TransferKind string

const (
	TransferText TransferKind = "text"
	TransferLink TransferKind = "link"
	TransferFile TransferKind = "file"
)

// TransferStatus tracks a transfer through its lifetime.
type TransferStatus string

const (
	StatusPending      TransferStatus = "pending"
	StatusTransferring TransferStatus = "transferring"
	StatusCompleted    TransferStatus = "completed"
	StatusFailed       TransferStatus = "failed"
)

// Transfer is one logical unit of relayed content. Text and link
// transfers carry Content; file transfers carry the File* fields.
// Nothing here survives the room it was created in.
type Transfer struct {
	ID         string         `msgpack:"id"`
	Kind       TransferKind   `msgpack:"kind"`
	SenderID   string         `msgpack:"senderId"`
	ReceiverID string         `msgpack:"receiverId"`
	Content    string         `msgpack:"content,omitempty"`
	FileName   string         `msgpack:"fileName,omitempty"`
	FileSize   int64          `msgpack:"fileSize,omitempty"`
	FileType   string         `msgpack:"fileType,omitempty"`
	Status     TransferStatus `msgpack:"status"`
	Progress   int            `msgpack:"progress"`
	CreatedAt  time.Time      `msgpack:"createdAt"`
}
