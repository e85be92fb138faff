// Package room owns the authoritative in-memory room state. All
// membership mutations go through the four Registry operations;
// nothing else may touch room membership.
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
)

// DefaultCapacity is the server-enforced member limit per room.
const DefaultCapacity = 2

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrInvalidCode  = errors.New("invalid room code")
)

// Registry is the in-memory store of live rooms keyed by code. A room
// exists from the create that makes it until the leave that empties it.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*protocol.Room
	capacity int
}

// NewRegistry creates a registry enforcing the given capacity per
// room. A capacity below 1 falls back to DefaultCapacity.
func NewRegistry(capacity int) *Registry {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Registry{
		rooms:    make(map[string]*protocol.Room),
		capacity: capacity,
	}
}

// Create makes a new room with device as its sole member and host.
// Fails with ErrRoomExists if the code maps to a live room.
func (r *Registry) Create(code string, device protocol.Device) (protocol.Room, error) {
	if !protocol.ValidRoomCode(code) {
		return protocol.Room{}, ErrInvalidCode
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[code]; ok {
		return protocol.Room{}, ErrRoomExists
	}

	device.IsHost = true
	room := &protocol.Room{
		Code:      code,
		Devices:   []protocol.Device{device},
		HostID:    device.ID,
		CreatedAt: time.Now(),
	}
	r.rooms[code] = room

	return snapshot(room), nil
}

// Join appends device to the room with the given code, preserving
// insertion order. The capacity check and the append are atomic with
// respect to concurrent joins on the same room.
func (r *Registry) Join(code string, device protocol.Device) (protocol.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return protocol.Room{}, ErrRoomNotFound
	}
	if len(room.Devices) >= r.capacity {
		return protocol.Room{}, ErrRoomFull
	}

	device.IsHost = false
	room.Devices = append(room.Devices, device)

	return snapshot(room), nil
}

// Leave removes deviceID from the room with the given code. An emptied
// room is deleted immediately. If the departing device was host, the
// earliest-joined remaining device is promoted. The second return is
// false when the device was not a member (a no-op).
func (r *Registry) Leave(code, deviceID string) (protocol.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return protocol.Room{}, false
	}

	idx := -1
	for i, d := range room.Devices {
		if d.ID == deviceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return protocol.Room{}, false
	}

	room.Devices = append(room.Devices[:idx], room.Devices[idx+1:]...)

	if len(room.Devices) == 0 {
		delete(r.rooms, code)
		return protocol.Room{Code: code}, true
	}

	if room.HostID == deviceID {
		room.Devices[0].IsHost = true
		room.HostID = room.Devices[0].ID
	}

	return snapshot(room), true
}

// Get returns a snapshot of the room with the given code.
func (r *Registry) Get(code string) (protocol.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return protocol.Room{}, false
	}
	return snapshot(room), true
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// snapshot copies a room so callers can broadcast it without holding
// the registry lock.
func snapshot(room *protocol.Room) protocol.Room {
	out := *room
	out.Devices = make([]protocol.Device, len(room.Devices))
	copy(out.Devices, room.Devices)
	return out
}
