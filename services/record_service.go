// services/record_service.go
package services

import (
	"time"

	"github.com/chocolatito/roomserver/models"
	"github.com/chocolatito/roomserver/persistence"
	"github.com/chocolatito/roomserver/stop"
)

// RecordService archives completed Stop rounds and serves the aggregated
// leaderboard. Archiving is best-effort and never blocks game flow.
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// ArchiveRound stores the per-player totals of a finished round.
func (s *RecordService) ArchiveRound(roomID string, result stop.RoundResult) error {
	totals := make(map[string]int, len(result.Players))
	for _, p := range result.Players {
		totals[p.Name] = p.Total
	}

	return s.db.SaveRoundRecord(&models.RoundRecord{
		RoomID:    roomID,
		Letter:    result.Letter,
		Totals:    totals,
		CreatedAt: time.Now(),
	})
}

// Leaderboard returns the highest accumulated totals across all archived
// rounds.
func (s *RecordService) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.db.TopTotals(limit)
}
