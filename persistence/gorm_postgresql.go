// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chocolatito/roomserver/models"
)

// GormPostgreSQL archives round records through GORM.
type GormPostgreSQL struct {
	db *gorm.DB
}

// RoundRecordModel is the GORM mapping for an archived round. Totals are
// stored as a JSONB object keyed by player name.
type RoundRecordModel struct {
	ID        uint   `gorm:"primaryKey"`
	RoomID    string `gorm:"index;not null"`
	Letter    string `gorm:"not null"`
	Totals    string `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&RoundRecordModel{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) SaveRoundRecord(record *models.RoundRecord) error {
	totals, err := json.Marshal(record.Totals)
	if err != nil {
		return err
	}

	row := RoundRecordModel{
		RoomID: record.RoomID,
		Letter: record.Letter,
		Totals: string(totals),
	}
	return p.db.Create(&row).Error
}

func (p *GormPostgreSQL) TopTotals(limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry

	err := p.db.Raw(
		`
        SELECT
            t.key AS name,
            SUM(t.value::int) AS total_score,
            COUNT(*) AS rounds
        FROM round_record_models, jsonb_each_text(totals::jsonb) AS t
        GROUP BY t.key
        ORDER BY total_score DESC
        LIMIT ?`,
		limit,
	).Scan(&entries).Error

	return entries, err
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
