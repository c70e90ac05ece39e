// models/models.go
package models

import (
	"time"
)

// RoundRecord is one archived Stop round: the room it was played in, the
// letter, and each participant's total for the round.
type RoundRecord struct {
	RoomID    string         `json:"room_id"`
	Letter    string         `json:"letter"`
	Totals    map[string]int `json:"totals"` // player name -> round total
	CreatedAt time.Time      `json:"created_at"`
}

// LeaderboardEntry aggregates archived totals per player name.
type LeaderboardEntry struct {
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
	Rounds     int    `json:"rounds"`
}
