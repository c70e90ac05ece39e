// room/room.go
package room

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chocolatito/roomserver/board"
	"github.com/chocolatito/roomserver/network"
	"github.com/chocolatito/roomserver/stop"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotYourTurn  = errors.New("not your turn")
)

// Player is one room member, keyed by its session id. It lives exactly as
// long as the underlying connection.
type Player struct {
	SID    string `json:"sid"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Color  string `json:"color"`
}

// GameState is the mutable drawing-game state. Moves and shapes are
// append-only; entries are stored verbatim as supplied by clients.
type GameState struct {
	Moves     []json.RawMessage `json:"moves"`
	Triangles []json.RawMessage `json:"triangles"`
	Squares   []json.RawMessage `json:"squares"`
	TurnIndex int               `json:"turnIndex"`
}

func newGameState() *GameState {
	return &GameState{
		Moves:     make([]json.RawMessage, 0),
		Triangles: make([]json.RawMessage, 0),
		Squares:   make([]json.RawMessage, 0),
	}
}

// Snapshot is the room_state payload broadcast after every mutation.
type Snapshot struct {
	State   GameState `json:"state"`
	Players []Player  `json:"players"`
}

// InitSnapshot is the private room_init payload a joining session receives.
type InitSnapshot struct {
	Points  []board.Point `json:"points"`
	State   GameState     `json:"state"`
	Players []Player      `json:"players"`
}

// Room owns all per-room game state. Every mutation is serialized by a
// single mutex; operations on different rooms run in parallel.
type Room struct {
	ID        string
	CreatedAt time.Time

	players map[string]*Player
	order   []string // session ids in join order; drives the turn rotation
	state   *GameState
	points  []board.Point
	stop    *stop.Session

	broadcaster Broadcaster
	mutex       sync.Mutex
}

func NewRoom(id string, points []board.Point, broadcaster Broadcaster) *Room {
	return &Room{
		ID:          id,
		CreatedAt:   time.Now(),
		players:     make(map[string]*Player),
		state:       newGameState(),
		points:      points,
		broadcaster: broadcaster,
	}
}

// Join inserts (or overwrites) the player entry for the session, sends the
// full board privately to the joiner, and broadcasts the updated state to
// the room.
func (r *Room) Join(sessionID, name, symbol, color string) {
	r.mutex.Lock()
	if _, exists := r.players[sessionID]; !exists {
		r.order = append(r.order, sessionID)
	}
	r.players[sessionID] = &Player{SID: sessionID, Name: name, Symbol: symbol, Color: color}

	init := InitSnapshot{Points: r.points, State: *r.state, Players: r.playerList()}
	snap := r.snapshot()
	r.mutex.Unlock()

	r.broadcaster.SendToSession(sessionID, network.EventRoomInit, init)
	r.broadcaster.BroadcastToRoom(r.ID, network.EventRoomState, snap)
}

// RemovePlayer drops the session's membership, compacting the turn order.
// Removal shifts every later join position, which silently reassigns whose
// turn the current pointer refers to. Returns true when the room is empty
// afterwards so the registry can reap it.
func (r *Room) RemovePlayer(sessionID string) (empty bool) {
	r.mutex.Lock()
	if _, exists := r.players[sessionID]; !exists {
		empty = len(r.players) == 0
		r.mutex.Unlock()
		return empty
	}

	delete(r.players, sessionID)
	for i, id := range r.order {
		if id == sessionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	empty = len(r.players) == 0
	snap := r.snapshot()
	r.mutex.Unlock()

	if !empty {
		r.broadcaster.BroadcastToRoom(r.ID, network.EventRoomState, snap)
	}
	return empty
}

// SubmitMove appends a move when it is the caller's turn and advances the
// turn pointer. The pointer is interpreted modulo the player count at the
// moment of the move, so membership changes between moves reassign turns.
func (r *Room) SubmitMove(sessionID string, req network.MakeMoveRequest) error {
	r.mutex.Lock()

	if len(r.order) == 0 {
		r.mutex.Unlock()
		return ErrNotYourTurn
	}

	turn := r.state.TurnIndex % len(r.order)
	if r.order[turn] != sessionID {
		r.mutex.Unlock()
		return ErrNotYourTurn
	}

	color := req.Color
	if strings.TrimSpace(color) == "" {
		if p, exists := r.players[sessionID]; exists {
			color = p.Color
		}
	}

	var move json.RawMessage
	if len(req.Move) > 0 {
		move = req.Move
	} else {
		move, _ = json.Marshal(map[string]interface{}{
			"p1":     req.P1,
			"p2":     req.P2,
			"player": req.Player,
			"symbol": req.Symbol,
			"color":  color,
		})
	}

	r.state.Moves = append(r.state.Moves, move)
	r.state.TurnIndex = (turn + 1) % len(r.order)

	snap := r.snapshot()
	r.mutex.Unlock()

	r.broadcaster.BroadcastToRoom(r.ID, network.EventRoomState, snap)
	return nil
}

// AddTriangle appends a completed triangle. No turn restriction, no
// ownership check, no validation; duplicates append twice.
func (r *Room) AddTriangle(shape json.RawMessage) {
	r.mutex.Lock()
	r.state.Triangles = append(r.state.Triangles, shape)
	snap := r.snapshot()
	r.mutex.Unlock()

	r.broadcaster.BroadcastToRoom(r.ID, network.EventRoomState, snap)
}

// AddSquare appends a completed square under the same rules as AddTriangle.
func (r *Room) AddSquare(shape json.RawMessage) {
	r.mutex.Lock()
	r.state.Squares = append(r.state.Squares, shape)
	snap := r.snapshot()
	r.mutex.Unlock()

	r.broadcaster.BroadcastToRoom(r.ID, network.EventRoomState, snap)
}

// JoinStop registers the session as a Stop participant, creating the Stop
// session lazily on first use, and sends the current Stop state privately
// to the joiner.
func (r *Room) JoinStop(sessionID, name string) {
	r.mutex.Lock()
	if r.stop == nil {
		r.stop = stop.NewSession()
	}
	r.stop.Join(sessionID, name)
	snap := r.stop.Snapshot()
	r.mutex.Unlock()

	r.broadcaster.SendToSession(sessionID, network.EventStopState, snap)
}

// GenerateStopLetter starts a new Stop round and broadcasts the letter.
func (r *Room) GenerateStopLetter() {
	r.mutex.Lock()
	if r.stop == nil {
		r.stop = stop.NewSession()
	}
	letter := r.stop.GenerateLetter()
	r.mutex.Unlock()

	r.broadcaster.BroadcastToRoom(r.ID, network.EventNewLetter, network.NewLetterPayload{Letter: letter})
}

// SubmitStopAnswers stores the player's answers for the running round.
// Silently ignored when there is no Stop session, the session is not a
// registered participant, or no round is active.
func (r *Room) SubmitStopAnswers(sessionID string, answers map[string]string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.stop == nil {
		return
	}
	r.stop.SubmitAnswers(sessionID, answers)
}

// EndStopRound deactivates the round, scores it, and broadcasts the
// per-player results with the letter. No-op without a Stop session.
func (r *Room) EndStopRound() (stop.RoundResult, bool) {
	r.mutex.Lock()
	if r.stop == nil {
		r.mutex.Unlock()
		return stop.RoundResult{}, false
	}

	r.stop.EndRound()
	result := r.stop.Result()
	r.mutex.Unlock()

	r.broadcaster.BroadcastToRoom(r.ID, network.EventRoundResult, result)
	return result, true
}

// PlayerCount returns the current number of joined players.
func (r *Room) PlayerCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.players)
}

// Players returns the current member list in join order.
func (r *Room) Players() []Player {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.playerList()
}

// TurnIndex returns the current turn pointer.
func (r *Room) TurnIndex() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state.TurnIndex
}

// MoveCount returns the length of the move log.
func (r *Room) MoveCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.state.Moves)
}

// playerList and snapshot must be called with the room mutex held.
func (r *Room) playerList() []Player {
	players := make([]Player, 0, len(r.order))
	for _, id := range r.order {
		if p, exists := r.players[id]; exists {
			players = append(players, *p)
		}
	}
	return players
}

func (r *Room) snapshot() Snapshot {
	return Snapshot{State: *r.state, Players: r.playerList()}
}
