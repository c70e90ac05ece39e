// room/interfaces.go
package room

// Broadcaster delivers event payloads either to every session joined to a
// room or to a single session. Defined here so room does not depend on the
// broadcast package.
type Broadcaster interface {
	BroadcastToRoom(roomID string, event string, payload interface{}) error
	SendToSession(sessionID string, event string, payload interface{}) error
}
