// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/chocolatito/roomserver/models"
)

// PostgreSQL archives round records over database/sql with the lib/pq
// driver, for deployments that prefer raw SQL over GORM.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS round_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(255) NOT NULL,
            letter VARCHAR(1) NOT NULL,
            totals JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_round_records_room_id ON round_records(room_id);
        CREATE INDEX IF NOT EXISTS idx_round_records_created_at ON round_records(created_at);
    `)

	return err
}

func (p *PostgreSQL) SaveRoundRecord(record *models.RoundRecord) error {
	totals, err := json.Marshal(record.Totals)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO round_records (room_id, letter, totals)
        VALUES ($1, $2, $3)
    `

	_, err = p.db.ExecContext(ctx, query, record.RoomID, record.Letter, totals)
	return err
}

func (p *PostgreSQL) TopTotals(limit int) ([]models.LeaderboardEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        SELECT
            t.key AS name,
            SUM(t.value::int) AS total_score,
            COUNT(*) AS rounds
        FROM round_records, jsonb_each_text(totals) AS t
        GROUP BY t.key
        ORDER BY total_score DESC
        LIMIT $1
    `

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.TotalScore, &e.Rounds); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
