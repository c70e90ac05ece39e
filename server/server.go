// server/server.go
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chocolatito/roomserver/logger"
	"github.com/chocolatito/roomserver/monitor"
	"github.com/chocolatito/roomserver/network"
	"github.com/chocolatito/roomserver/room"
	"github.com/chocolatito/roomserver/services"
	"github.com/chocolatito/roomserver/session"
)

// Default player attributes applied when a join omits them.
const (
	defaultName   = "Anon"
	defaultSymbol = "X"
	defaultColor  = "#000"
)

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    room.Broadcaster
	records        *services.RecordService // nil when round archiving is disabled
	monitor        *monitor.Monitor        // nil disables metrics
	shutdownChan   chan struct{}
}

func NewGameServer(addr string, rm *room.Manager, sm *session.Manager, b room.Broadcaster,
	records *services.RecordService, mon *monitor.Monitor) *GameServer {
	return &GameServer{
		addr:           addr,
		roomManager:    rm,
		sessionManager: sm,
		broadcaster:    b,
		records:        records,
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *GameServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/create_room", s.handleCreateRoom)
	mux.HandleFunc("/join_room", s.handleJoinRoom)
	mux.HandleFunc("/ws", s.handleWebSocket)
	if s.records != nil {
		mux.HandleFunc("/leaderboard", s.handleLeaderboard)
	}

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
}

// --- HTTP endpoints (presentation boundary) ---

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// handleCreateRoom allocates a fresh room for the requesting player. The
// page layer redirects into the room using the returned id.
func (s *GameServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))

	if name == "" || symbol == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nombre y símbolo requeridos"})
		return
	}

	created := s.roomManager.CreateRoom(s.broadcaster)
	logger.Log.Infof("Room %s created for %s", created.ID, name)

	writeJSON(w, http.StatusOK, map[string]string{"room": created.ID})
}

// handleJoinRoom validates that the requested room exists before the page
// layer lets the player in. Room-not-found is a distinct condition.
func (s *GameServer) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(r.URL.Query().Get("room"))
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))

	if roomID == "" || name == "" || symbol == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sala, nombre y símbolo requeridos"})
		return
	}

	if _, exists := s.roomManager.GetRoom(roomID); !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("Sala %s no encontrada", roomID),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"room": roomID})
}

func (s *GameServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := s.records.Leaderboard(limit)
	if err != nil {
		logger.Log.Errorf("Leaderboard query failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "consulta fallida"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"players": entries})
}

// --- WebSocket transport ---

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncOnlinePlayers()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		if s.monitor != nil {
			s.monitor.DecOnlinePlayers()
		}
		s.handleDisconnect(sess)
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			ev, err := wsConn.ReadEvent()
			if err != nil {
				return
			}
			s.handleEvent(sess, ev)
		}
	}
}

// handleDisconnect reports the dropped connection to the core as a single
// leave. Membership is gone for good; there is no resumption.
func (s *GameServer) handleDisconnect(sess *session.Session) {
	roomID := sess.RoomID()
	if roomID == "" {
		return
	}

	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		return
	}

	if r.RemovePlayer(sess.GetID()) {
		s.roomManager.RemoveIfEmpty(roomID)
		logger.Log.Infof("Room %s destroyed (last player left)", roomID)
	}
}

// leaveCurrentRoom removes the session from its previous room before it
// rebinds to another one. Without this a room switch would orphan the old
// membership: the player would hold a seat in the turn rotation forever
// and the room would never be reaped.
func (s *GameServer) leaveCurrentRoom(sess *session.Session, nextRoomID string) {
	prev := sess.RoomID()
	if prev == "" || prev == nextRoomID {
		return
	}

	r, exists := s.roomManager.GetRoom(prev)
	if !exists {
		return
	}

	if r.RemovePlayer(sess.GetID()) {
		s.roomManager.RemoveIfEmpty(prev)
		logger.Log.Infof("Room %s destroyed (last player left)", prev)
	}
}

func (s *GameServer) handleEvent(sess *session.Session, ev *network.Event) {
	if s.monitor != nil {
		s.monitor.IncEventsReceived()
		start := time.Now()
		defer func() {
			s.monitor.ObserveEventLatency(time.Since(start))
		}()
	}

	switch ev.Name {
	case network.EventJoinRoom:
		s.onJoinRoom(sess, ev.Data)
	case network.EventMakeMove:
		s.onMakeMove(sess, ev.Data)
	case network.EventAddTriangle:
		s.onAddTriangle(sess, ev.Data)
	case network.EventAddSquare:
		s.onAddSquare(sess, ev.Data)
	case network.EventJoinStop:
		s.onJoinStop(sess, ev.Data)
	case network.EventGenerateLetter:
		s.onGenerateLetter(sess, ev.Data)
	case network.EventSubmitAnswers:
		s.onSubmitAnswers(sess, ev.Data)
	case network.EventEndRound:
		s.onEndRound(sess, ev.Data)
	default:
		logger.Log.Infof("Unknown event %q from session %s", ev.Name, sess.GetID())
	}
}

func (s *GameServer) sendError(sess *session.Session, message string) {
	sess.Send(network.EventError, network.ErrorPayload{Message: message})
}

// resolveRoom applies the uniform existence guard for socket mutations:
// the room is looked up first; when absent an error event is sent and the
// operation becomes a no-op.
func (s *GameServer) resolveRoom(sess *session.Session, roomID string) (*room.Room, bool) {
	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		s.sendError(sess, "Sala no existe")
		return nil, false
	}
	return r, true
}

func (s *GameServer) onJoinRoom(sess *session.Session, data json.RawMessage) {
	var req network.JoinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	if req.Room == "" {
		s.sendError(sess, "Sala no especificada")
		return
	}

	if req.Name == "" {
		req.Name = defaultName
	}
	if req.Symbol == "" {
		req.Symbol = defaultSymbol
	}
	if req.Color == "" {
		req.Color = defaultColor
	}

	// A socket join creates its room lazily; the /join_room endpoint is
	// where room existence is surfaced to the user.
	s.leaveCurrentRoom(sess, req.Room)
	r := s.roomManager.GetOrCreate(req.Room, s.broadcaster)
	sess.SetRoomID(req.Room)
	r.Join(sess.GetID(), req.Name, req.Symbol, req.Color)

	logger.Log.Infof("Session %s joined room %s as %q", sess.GetID(), req.Room, req.Name)
}

func (s *GameServer) onMakeMove(sess *session.Session, data json.RawMessage) {
	var req network.MakeMoveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	if req.Room == "" {
		return
	}

	r, ok := s.resolveRoom(sess, req.Room)
	if !ok {
		return
	}

	if err := r.SubmitMove(sess.GetID(), req); err != nil {
		s.sendError(sess, "No es tu turno")
	}
}

func (s *GameServer) onAddTriangle(sess *session.Session, data json.RawMessage) {
	var req network.AddTriangleRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	r, ok := s.resolveRoom(sess, req.Room)
	if !ok {
		return
	}
	r.AddTriangle(req.Triangle)
}

func (s *GameServer) onAddSquare(sess *session.Session, data json.RawMessage) {
	var req network.AddSquareRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	r, ok := s.resolveRoom(sess, req.Room)
	if !ok {
		return
	}
	r.AddSquare(req.Square)
}

func (s *GameServer) onJoinStop(sess *session.Session, data json.RawMessage) {
	var req network.JoinStopRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	r, ok := s.resolveRoom(sess, req.Room)
	if !ok {
		return
	}
	if req.Name == "" {
		req.Name = defaultName
	}

	s.leaveCurrentRoom(sess, req.Room)
	sess.SetRoomID(req.Room)
	r.JoinStop(sess.GetID(), req.Name)
}

func (s *GameServer) onGenerateLetter(sess *session.Session, data json.RawMessage) {
	var req network.RoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	r, exists := s.roomManager.GetRoom(req.Room)
	if !exists {
		return
	}
	r.GenerateStopLetter()
}

func (s *GameServer) onSubmitAnswers(sess *session.Session, data json.RawMessage) {
	var req network.SubmitAnswersRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	r, exists := s.roomManager.GetRoom(req.Room)
	if !exists {
		return
	}
	r.SubmitStopAnswers(sess.GetID(), req.Answers)
}

func (s *GameServer) onEndRound(sess *session.Session, data json.RawMessage) {
	var req network.RoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	r, exists := s.roomManager.GetRoom(req.Room)
	if !exists {
		return
	}

	result, ok := r.EndStopRound()
	if !ok {
		return
	}

	if s.records != nil {
		go func() {
			if err := s.records.ArchiveRound(req.Room, result); err != nil {
				logger.Log.Errorf("Failed to archive round for room %s: %v", req.Room, err)
			}
		}()
	}
}
