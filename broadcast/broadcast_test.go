package broadcast

import (
	"net"
	"testing"
	"time"

	"github.com/chocolatito/roomserver/network"
	"github.com/chocolatito/roomserver/session"
)

// MockConnection records sent events for assertions.
type MockConnection struct {
	events []string
	fail   bool
}

func (m *MockConnection) Send(event string, payload interface{}) error {
	if m.fail {
		return net.ErrClosed
	}
	m.events = append(m.events, event)
	return nil
}
func (m *MockConnection) Close() error                        { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration) {}
func (m *MockConnection) ReadEvent() (*network.Event, error)  { return nil, nil }

func addSession(t *testing.T, manager *session.Manager, id, roomID string) *MockConnection {
	t.Helper()
	conn := &MockConnection{}
	sess := session.NewSession(id, conn)
	sess.SetRoomID(roomID)
	manager.Add(sess)
	return conn
}

func TestBroadcastToRoom_OnlyRoomMembers(t *testing.T) {
	manager := session.NewManager()
	inRoom1 := addSession(t, manager, "s1", "sala01")
	inRoom2 := addSession(t, manager, "s2", "sala01")
	outside := addSession(t, manager, "s3", "sala02")

	b := NewRoomBroadcaster(manager)
	if err := b.BroadcastToRoom("sala01", "room_state", map[string]string{}); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}

	if len(inRoom1.events) != 1 || len(inRoom2.events) != 1 {
		t.Errorf("Expected both room members to receive the event, got %d/%d",
			len(inRoom1.events), len(inRoom2.events))
	}
	if len(outside.events) != 0 {
		t.Errorf("Session in another room must not receive the event, got %v", outside.events)
	}
}

func TestBroadcastToRoom_SkipsFailedSends(t *testing.T) {
	manager := session.NewManager()
	healthy := addSession(t, manager, "s1", "sala01")

	broken := &MockConnection{fail: true}
	sess := session.NewSession("s2", broken)
	sess.SetRoomID("sala01")
	manager.Add(sess)

	b := NewRoomBroadcaster(manager)
	if err := b.BroadcastToRoom("sala01", "room_state", map[string]string{}); err != nil {
		t.Fatalf("A failed send must not fail the broadcast: %v", err)
	}
	if len(healthy.events) != 1 {
		t.Errorf("Healthy session should still receive the event, got %d", len(healthy.events))
	}
}

func TestSendToSession(t *testing.T) {
	manager := session.NewManager()
	conn := addSession(t, manager, "s1", "sala01")

	b := NewRoomBroadcaster(manager)
	if err := b.SendToSession("s1", "room_init", map[string]string{}); err != nil {
		t.Fatalf("SendToSession failed: %v", err)
	}
	if len(conn.events) != 1 || conn.events[0] != "room_init" {
		t.Errorf("Expected a single room_init delivery, got %v", conn.events)
	}

	if err := b.SendToSession("ghost", "room_init", nil); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}
