package stop

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSession_Join_RegistersPlayer(t *testing.T) {
	s := NewSession()
	s.Join("sid1", "Ana")

	if !s.IsPlayer("sid1") {
		t.Fatal("Joined player should be registered")
	}
	if s.IsPlayer("sid2") {
		t.Fatal("Unknown session should not be registered")
	}
}

func TestSession_Snapshot_KeepsPriorLetter(t *testing.T) {
	s := NewSession()
	s.Join("sid1", "Ana")
	s.GenerateLetter()
	s.EndRound()

	letter := s.CurrentLetter

	// A player joining after the round ended must see the old letter
	// with the round flagged inactive.
	s.Join("sid2", "Beto")
	snap := s.Snapshot()

	if snap.RoundActive {
		t.Error("Round should be inactive after EndRound")
	}
	if snap.CurrentLetter != letter {
		t.Errorf("Expected snapshot letter %q, got %q", letter, snap.CurrentLetter)
	}
	if len(snap.Players) != 2 {
		t.Errorf("Expected 2 players in snapshot, got %d", len(snap.Players))
	}
}

func TestSession_GenerateLetter_UppercaseAndReset(t *testing.T) {
	s := NewSession()
	s.Join("sid1", "Ana")

	s.GenerateLetter()
	if !s.SubmitAnswers("sid1", map[string]string{"Animal": "perro"}) {
		t.Fatal("SubmitAnswers should succeed while round is active")
	}

	for i := 0; i < 100; i++ {
		letter := s.GenerateLetter()
		if len(letter) != 1 || letter < "A" || letter > "Z" {
			t.Fatalf("Expected a single uppercase letter, got %q", letter)
		}
	}

	// Every GenerateLetter clears stored answers.
	snap := s.Snapshot()
	if len(snap.Players[0].Answers) != 0 {
		t.Errorf("Expected answers to be cleared, got %v", snap.Players[0].Answers)
	}
	if !snap.RoundActive {
		t.Error("GenerateLetter should activate the round")
	}
}

func TestSession_SubmitAnswers_Guards(t *testing.T) {
	s := NewSession()
	s.Join("sid1", "Ana")

	// Round not active yet.
	if s.SubmitAnswers("sid1", map[string]string{"Cosa": "mesa"}) {
		t.Error("SubmitAnswers should be a no-op when no round is active")
	}

	s.GenerateLetter()

	// Unregistered session.
	if s.SubmitAnswers("ghost", map[string]string{"Cosa": "mesa"}) {
		t.Error("SubmitAnswers should be a no-op for an unregistered session")
	}

	// Last submission wins.
	s.SubmitAnswers("sid1", map[string]string{"Cosa": "mesa"})
	s.SubmitAnswers("sid1", map[string]string{"Cosa": "silla"})
	s.EndRound()

	result := s.Result()
	if result.Players["sid1"].Answers["Cosa"] != "silla" {
		t.Errorf("Expected last submission to win, got %q", result.Players["sid1"].Answers["Cosa"])
	}
}

func TestSession_EndRound_DuplicateScoring(t *testing.T) {
	s := NewSession()
	s.Join("a", "A")
	s.Join("b", "B")
	s.Join("c", "C")
	s.GenerateLetter()

	s.SubmitAnswers("a", map[string]string{"Animal": "perro"})
	s.SubmitAnswers("b", map[string]string{"Animal": "perro"})
	s.SubmitAnswers("c", map[string]string{"Animal": "gato"})
	s.EndRound()

	result := s.Result()
	if got := result.Players["a"].Scores["Animal"]; got != 5 {
		t.Errorf("Duplicate answer should score 5, got %d", got)
	}
	if got := result.Players["b"].Scores["Animal"]; got != 5 {
		t.Errorf("Duplicate answer should score 5, got %d", got)
	}
	if got := result.Players["c"].Scores["Animal"]; got != 10 {
		t.Errorf("Unique answer should score 10, got %d", got)
	}
}

func TestSession_EndRound_AllSameWord(t *testing.T) {
	s := NewSession()
	s.Join("a", "A")
	s.Join("b", "B")
	s.Join("c", "C")
	s.GenerateLetter()

	for _, id := range []string{"a", "b", "c"} {
		s.SubmitAnswers(id, map[string]string{"Animal": "gato"})
	}
	s.EndRound()

	result := s.Result()
	for _, id := range []string{"a", "b", "c"} {
		if got := result.Players[id].Scores["Animal"]; got != 5 {
			t.Errorf("Player %s: expected 5 for shared answer, got %d", id, got)
		}
	}
}

func TestSession_EndRound_NormalizationAndEmpty(t *testing.T) {
	s := NewSession()
	s.Join("a", "A")
	s.Join("b", "B")
	s.GenerateLetter()

	// Same word modulo case and surrounding whitespace counts as duplicate.
	s.SubmitAnswers("a", map[string]string{"Color": "  Rojo "})
	s.SubmitAnswers("b", map[string]string{"Color": "rojo", "Cosa": "   "})
	s.EndRound()

	result := s.Result()
	if got := result.Players["a"].Scores["Color"]; got != 5 {
		t.Errorf("Expected 5 for case/space-insensitive duplicate, got %d", got)
	}
	if got := result.Players["b"].Scores["Cosa"]; got != 0 {
		t.Errorf("Whitespace-only answer should score 0, got %d", got)
	}

	// Omitted categories score 0, total is the sum of the seven categories.
	if got := result.Players["b"].Total; got != 5 {
		t.Errorf("Expected total 5 (one duplicate, rest empty), got %d", got)
	}
}

func TestSession_EndRound_Deactivates(t *testing.T) {
	s := NewSession()
	s.Join("a", "A")
	s.GenerateLetter()
	s.EndRound()

	if s.RoundActive() {
		t.Error("EndRound should deactivate the round")
	}
	if s.SubmitAnswers("a", map[string]string{"Animal": "gato"}) {
		t.Error("SubmitAnswers should fail after EndRound")
	}
}

func TestPlayerView_MarshalFlattensScores(t *testing.T) {
	s := NewSession()
	s.Join("a", "A")
	s.Join("b", "B")
	s.GenerateLetter()
	s.SubmitAnswers("a", map[string]string{"Animal": "perro"})
	s.EndRound()

	data, err := json.Marshal(s.Result())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	payload := string(data)
	if !strings.Contains(payload, `"Animal_score":10`) {
		t.Errorf("Expected flattened Animal_score key in payload: %s", payload)
	}
	if !strings.Contains(payload, `"Fruta/Verdura_score":0`) {
		t.Errorf("Expected flattened score for empty category: %s", payload)
	}
}
