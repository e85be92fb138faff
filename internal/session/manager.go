// Package session maps live connections to device identities and room
// membership. It is the only index from which the relay resolves a
// logical receiver id to a connection.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
)

// Sender is the outbound half of a connection. Enqueue must not block;
// it reports whether the message was accepted.
type Sender interface {
	Enqueue(msg *protocol.Message) bool
}

// Session binds one live connection to at most one device and room.
type Session struct {
	ID       string
	Device   protocol.Device
	RoomCode string
	Conn     Sender
}

// InRoom reports whether the session currently holds a room.
func (s *Session) InRoom() bool {
	return s.RoomCode != ""
}

// Manager owns the session index. The device index exists so receiver
// resolution is O(1) instead of a scan over rooms and members.
type Manager struct {
	mu       sync.Mutex
	byID     map[string]*Session
	byDevice map[string]string // device id -> session id
}

func NewManager() *Manager {
	return &Manager{
		byID:     make(map[string]*Session),
		byDevice: make(map[string]string),
	}
}

// Register creates a session for a new connection. The device identity
// is attached later, when the client requests create/join.
func (m *Manager) Register(conn Sender) *Session {
	s := &Session{
		ID:   uuid.NewString(),
		Conn: conn,
	}

	m.mu.Lock()
	m.byID[s.ID] = s
	m.mu.Unlock()

	return s
}

// Bind attaches a device identity and room code to the session. It is
// called together with the registry mutation that admitted the device,
// so the index never disagrees with room membership.
func (m *Manager) Bind(sessionID string, device protocol.Device, roomCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byID[sessionID]
	if !ok {
		return
	}
	s.Device = device
	s.RoomCode = roomCode
	m.byDevice[device.ID] = s.ID
}

// Unbind detaches the session from its room, keeping the connection
// alive. Safe to call when the session holds no room.
func (m *Manager) Unbind(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byID[sessionID]
	if !ok {
		return
	}
	if s.Device.ID != "" {
		delete(m.byDevice, s.Device.ID)
	}
	s.Device = protocol.Device{}
	s.RoomCode = ""
}

// Remove destroys the session entirely. Idempotent: a second call for
// the same id is a no-op, which lets disconnect and explicit leave
// share one cleanup path.
func (m *Manager) Remove(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byID[sessionID]
	if !ok {
		return nil, false
	}
	delete(m.byID, sessionID)
	if s.Device.ID != "" {
		delete(m.byDevice, s.Device.ID)
	}
	return s, true
}

// Get returns the session with the given id.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[sessionID]
	return s, ok
}

// ByDevice resolves a device id to its session.
func (m *Manager) ByDevice(deviceID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessionID, ok := m.byDevice[deviceID]
	if !ok {
		return nil, false
	}
	s, ok := m.byID[sessionID]
	return s, ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
