// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/chocolatito/roomserver/network"
)

// Session wraps one live connection. The session ID doubles as the
// player's membership key inside a room; it dies with the connection.
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time

	roomID string
	mutex  sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(event string, payload interface{}) error {
	s.LastActive = time.Now()
	return s.Conn.Send(event, payload)
}

func (s *Session) GetID() string {
	return s.ID
}

// SetRoomID rebinds the session to a room. Guarded: broadcast paths on
// other connections read it concurrently.
func (s *Session) SetRoomID(roomID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.roomID = roomID
}

// RoomID returns the room the session is currently bound to, or "".
func (s *Session) RoomID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks every live session in the process.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// GetByRoomID returns every session currently joined to the room, whether
// through the drawing game or the Stop game.
func (m *Manager) GetByRoomID(roomID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.RoomID() == roomID {
			result = append(result, session)
		}
	}
	return result
}
