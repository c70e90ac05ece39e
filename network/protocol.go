package network

import "encoding/json"

// Inbound event names.
const (
	EventJoinRoom       = "join_room"
	EventMakeMove       = "make_move"
	EventAddTriangle    = "add_triangle"
	EventAddSquare      = "add_square"
	EventJoinStop       = "join_stop"
	EventGenerateLetter = "generate_letter_stop"
	EventSubmitAnswers  = "submit_answers"
	EventEndRound       = "end_round"
)

// Outbound event names.
const (
	EventRoomInit    = "room_init"
	EventRoomState   = "room_state"
	EventError       = "error"
	EventStopState   = "stop_state"
	EventNewLetter   = "new_letter_stop"
	EventRoundResult = "round_result"
)

// JoinRoomRequest joins (and lazily creates) a drawing-game room.
type JoinRoomRequest struct {
	Room   string `json:"room"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Color  string `json:"color"`
}

// MakeMoveRequest claims a line segment. P1 and P2 identify the segment's
// endpoints (point index or coordinate pair, the core does not interpret
// them). Move, when present, is taken verbatim as the logged move.
type MakeMoveRequest struct {
	Room   string          `json:"room"`
	P1     json.RawMessage `json:"p1"`
	P2     json.RawMessage `json:"p2"`
	Move   json.RawMessage `json:"move,omitempty"`
	Player string          `json:"player"`
	Symbol string          `json:"symbol"`
	Color  string          `json:"color,omitempty"`
}

type AddTriangleRequest struct {
	Room     string          `json:"room"`
	Triangle json.RawMessage `json:"triangle"`
}

type AddSquareRequest struct {
	Room   string          `json:"room"`
	Square json.RawMessage `json:"square"`
}

type JoinStopRequest struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

// RoomRequest covers events whose payload is just the room id
// (generate_letter_stop, end_round).
type RoomRequest struct {
	Room string `json:"room"`
}

type SubmitAnswersRequest struct {
	Room    string            `json:"room"`
	Answers map[string]string `json:"answers"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type NewLetterPayload struct {
	Letter string `json:"letter"`
}
