// room/manager.go
package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/chocolatito/roomserver/board"
)

const roomIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const roomIDLength = 6

// Manager is the process-wide room registry. Rooms are reaped only through
// the empty-room rule; there is no idle timeout.
type Manager struct {
	rooms     map[string]*Room
	mutex     sync.RWMutex
	extent    board.Extent
	numPoints int
}

// RoomInfo is a read-only registry entry used by the admin surface.
type RoomInfo struct {
	ID          string    `json:"id"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewManager(extent board.Extent, numPoints int) *Manager {
	return &Manager{
		rooms:     make(map[string]*Room),
		extent:    extent,
		numPoints: numPoints,
	}
}

// CreateRoom registers a fresh room under a random identifier. Identifiers
// are re-rolled until unused, so an existing room is never overwritten.
func (m *Manager) CreateRoom(broadcaster Broadcaster) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	id := genRoomID()
	for _, exists := m.rooms[id]; exists; _, exists = m.rooms[id] {
		id = genRoomID()
	}

	room := NewRoom(id, board.GeneratePoints(m.numPoints, m.extent), broadcaster)
	m.rooms[id] = room
	return room
}

// GetOrCreate returns the room under the given id, creating it when absent.
// Socket joins create their room lazily through this path.
func (m *Manager) GetOrCreate(id string, broadcaster Broadcaster) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists {
		return room
	}

	room := NewRoom(id, board.GeneratePoints(m.numPoints, m.extent), broadcaster)
	m.rooms[id] = room
	return room
}

func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

// RemoveIfEmpty destroys the room once its player table is empty.
func (m *Manager) RemoveIfEmpty(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists && room.PlayerCount() == 0 {
		delete(m.rooms, id)
	}
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// List returns a registry snapshot for stats reporting.
func (m *Manager) List() []RoomInfo {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	infos := make([]RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		infos = append(infos, RoomInfo{
			ID:          r.ID,
			PlayerCount: r.PlayerCount(),
			CreatedAt:   r.CreatedAt,
		})
	}
	return infos
}

func genRoomID() string {
	b := make([]byte, roomIDLength)
	for i := range b {
		b[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))]
	}
	return string(b)
}
