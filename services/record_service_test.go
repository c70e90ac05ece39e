package services

import (
	"testing"

	"github.com/chocolatito/roomserver/models"
	"github.com/chocolatito/roomserver/stop"
)

// MockDatabase is a test double for the persistence.Database interface.
type MockDatabase struct {
	saved   []*models.RoundRecord
	entries []models.LeaderboardEntry
	limit   int
}

func (m *MockDatabase) SaveRoundRecord(record *models.RoundRecord) error {
	m.saved = append(m.saved, record)
	return nil
}

func (m *MockDatabase) TopTotals(limit int) ([]models.LeaderboardEntry, error) {
	m.limit = limit
	return m.entries, nil
}

func (m *MockDatabase) Close() error { return nil }

func TestRecordService_ArchiveRound(t *testing.T) {
	db := &MockDatabase{}
	svc := NewRecordService(db)

	result := stop.RoundResult{
		Letter: "G",
		Players: map[string]stop.PlayerView{
			"sid1": {Name: "Ana", Total: 45},
			"sid2": {Name: "Beto", Total: 30},
		},
	}

	if err := svc.ArchiveRound("sala01", result); err != nil {
		t.Fatalf("ArchiveRound failed: %v", err)
	}

	if len(db.saved) != 1 {
		t.Fatalf("Expected 1 saved record, got %d", len(db.saved))
	}
	record := db.saved[0]
	if record.RoomID != "sala01" || record.Letter != "G" {
		t.Errorf("Record carries wrong round identity: %+v", record)
	}
	if record.Totals["Ana"] != 45 || record.Totals["Beto"] != 30 {
		t.Errorf("Record totals wrong: %v", record.Totals)
	}
}

func TestRecordService_Leaderboard_DefaultLimit(t *testing.T) {
	db := &MockDatabase{entries: []models.LeaderboardEntry{{Name: "Ana", TotalScore: 45, Rounds: 1}}}
	svc := NewRecordService(db)

	entries, err := svc.Leaderboard(0)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if db.limit != 10 {
		t.Errorf("Expected default limit 10, got %d", db.limit)
	}
	if len(entries) != 1 || entries[0].Name != "Ana" {
		t.Errorf("Unexpected leaderboard: %+v", entries)
	}
}
