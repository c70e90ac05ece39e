// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/chocolatito/roomserver/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// RoomBroadcaster implements room.Broadcaster on top of the session table.
// Room membership is the session's RoomID, so Stop-only participants
// receive room broadcasts too. Delivery is fire-and-forget: a failed send
// is skipped, never retried, and never fails the broadcast.
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, event string, payload interface{}) error {
	for _, sess := range b.sessionManager.GetByRoomID(roomID) {
		if err := sess.Send(event, payload); err != nil {
			// Dead connections are cleaned up by their own read loop.
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) SendToSession(sessionID string, event string, payload interface{}) error {
	sess, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return ErrSessionNotFound
	}
	return sess.Send(event, payload)
}
