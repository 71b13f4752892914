package models

import "time"

type Game struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	Username      string `gorm:"type:text;not null;index"`
	GameUUID      string `gorm:"type:text;not null;uniqueIndex"`
	URL           string `gorm:"type:text"`
	WhiteUsername string `gorm:"type:text;not null"`
	WhiteRating   int    `gorm:"not null;default:0"`
	WhiteResult   string `gorm:"type:text"`
	BlackUsername string `gorm:"type:text;not null"`
	BlackRating   int    `gorm:"not null;default:0"`
	BlackResult   string `gorm:"type:text"`
	TimeClass     string `gorm:"type:text"`
	TimeControl   string `gorm:"type:text"`
	ECO           string `gorm:"type:text"`
	PGN           string `gorm:"type:text"`
	PlayedAt      time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Game) TableName() string {
	return "games"
}
