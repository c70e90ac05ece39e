// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/chocolatito/roomserver/models"
)

// Database archives completed Stop rounds. Rooms themselves are purely
// in-memory; this store only accumulates historical results.
type Database interface {
	SaveRoundRecord(record *models.RoundRecord) error
	TopTotals(limit int) ([]models.LeaderboardEntry, error)
	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
