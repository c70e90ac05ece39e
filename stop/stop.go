// stop/stop.go
package stop

import (
	"encoding/json"
	"math/rand"
	"strings"
)

// Categories is the fixed list a round is scored over.
var Categories = []string{
	"Nombre",
	"Apellido",
	"Color",
	"Cosa",
	"Animal",
	"Fruta/Verdura",
	"País/Ciudad",
}

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Phase is the round state. A session is either idle (no round running,
// results of the previous round still readable) or mid-round.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseRoundActive Phase = "round_active"
)

// Player holds one participant's answers for the current round and the
// scores of the last completed round. Totals persist until the next
// scoring pass overwrites them.
type Player struct {
	Name    string
	Answers map[string]string
	Scores  map[string]int
	Total   int
}

// Session is the per-room Stop engine. It carries no lock of its own;
// the owning room serializes all access.
type Session struct {
	CurrentLetter string
	phase         Phase
	players       map[string]*Player
	order         []string // join order, for stable snapshots
}

func NewSession() *Session {
	return &Session{
		phase:   PhaseIdle,
		players: make(map[string]*Player),
	}
}

// Join registers (or re-registers) a participant. Answers and total start
// empty; the current letter and phase are untouched, so a player joining
// between rounds sees the previous round's letter.
func (s *Session) Join(sessionID, name string) {
	if _, exists := s.players[sessionID]; !exists {
		s.order = append(s.order, sessionID)
	}
	s.players[sessionID] = &Player{
		Name:    name,
		Answers: make(map[string]string),
		Scores:  make(map[string]int),
	}
}

// IsPlayer reports whether the session id is a registered participant.
func (s *Session) IsPlayer(sessionID string) bool {
	_, exists := s.players[sessionID]
	return exists
}

// RoundActive reports whether a round is currently running.
func (s *Session) RoundActive() bool {
	return s.phase == PhaseRoundActive
}

// GenerateLetter starts a new round: picks a letter uniformly from A-Z,
// clears every player's answers and scores, and activates the round.
func (s *Session) GenerateLetter() string {
	letter := string(letters[rand.Intn(len(letters))])
	s.CurrentLetter = letter
	s.phase = PhaseRoundActive

	for _, p := range s.players {
		p.Answers = make(map[string]string)
		p.Scores = make(map[string]int)
	}

	return letter
}

// SubmitAnswers stores the player's raw answer map. The last submission
// before the round ends wins. Returns false (no-op) when the player is
// not registered or no round is active.
func (s *Session) SubmitAnswers(sessionID string, answers map[string]string) bool {
	player, exists := s.players[sessionID]
	if !exists || s.phase != PhaseRoundActive {
		return false
	}

	player.Answers = make(map[string]string, len(answers))
	for cat, word := range answers {
		player.Answers[cat] = word
	}
	return true
}

// EndRound deactivates the round and scores it. An empty normalized answer
// scores 0; an answer shared with at least one other player scores 5; a
// unique answer scores 10. Totals are the sum over all categories.
func (s *Session) EndRound() {
	s.phase = PhaseIdle

	for _, p := range s.players {
		total := 0
		for _, cat := range Categories {
			word := normalize(p.Answers[cat])

			pts := 0
			if word != "" {
				sameCount := 0
				for _, other := range s.players {
					if normalize(other.Answers[cat]) == word {
						sameCount++
					}
				}
				if sameCount > 1 {
					pts = 5
				} else {
					pts = 10
				}
			}

			p.Scores[cat] = pts
			total += pts
		}
		p.Total = total
	}
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// PlayerView is the wire shape of one participant. Scores are flattened
// into the answers object under "<category>_score" keys, which is the
// format the clients render.
type PlayerView struct {
	Name    string
	Answers map[string]string
	Scores  map[string]int
	Total   int
}

func (v PlayerView) MarshalJSON() ([]byte, error) {
	answers := make(map[string]interface{}, len(v.Answers)+len(v.Scores))
	for cat, word := range v.Answers {
		answers[cat] = word
	}
	for cat, pts := range v.Scores {
		answers[cat+"_score"] = pts
	}

	return json.Marshal(map[string]interface{}{
		"name":    v.Name,
		"answers": answers,
		"total":   v.Total,
	})
}

// StateSnapshot is the private payload sent to a joining participant.
type StateSnapshot struct {
	Players       []PlayerView `json:"players"`
	CurrentLetter string       `json:"current_letter"`
	RoundActive   bool         `json:"round_active"`
}

// RoundResult is broadcast to the whole room after scoring.
type RoundResult struct {
	Players map[string]PlayerView `json:"players"`
	Letter  string                `json:"letter"`
}

// Snapshot builds the join-time view: all players in join order, the
// current letter, and the active flag.
func (s *Session) Snapshot() StateSnapshot {
	players := make([]PlayerView, 0, len(s.order))
	for _, id := range s.order {
		players = append(players, s.view(id))
	}
	return StateSnapshot{
		Players:       players,
		CurrentLetter: s.CurrentLetter,
		RoundActive:   s.phase == PhaseRoundActive,
	}
}

// Result builds the post-scoring view keyed by session id.
func (s *Session) Result() RoundResult {
	players := make(map[string]PlayerView, len(s.players))
	for id := range s.players {
		players[id] = s.view(id)
	}
	return RoundResult{Players: players, Letter: s.CurrentLetter}
}

func (s *Session) view(sessionID string) PlayerView {
	p := s.players[sessionID]
	answers := make(map[string]string, len(p.Answers))
	for cat, word := range p.Answers {
		answers[cat] = word
	}
	scores := make(map[string]int, len(p.Scores))
	for cat, pts := range p.Scores {
		scores[cat] = pts
	}
	return PlayerView{Name: p.Name, Answers: answers, Scores: scores, Total: p.Total}
}
