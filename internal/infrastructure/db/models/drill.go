package models

import "time"

type Drill struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	GameID      string  `gorm:"type:uuid;not null;index;uniqueIndex:uq_drill_identity,priority:2"`
	Username    string  `gorm:"type:text;not null;index;uniqueIndex:uq_drill_identity,priority:1"`
	FEN         string  `gorm:"type:text;not null"`
	Ply         int     `gorm:"not null;uniqueIndex:uq_drill_identity,priority:3"`
	InitialEval float64 `gorm:"not null;default:0"`
	EvalSwing   float64 `gorm:"not null;default:0"`
	LosingMove  *string `gorm:"type:text"`

	WhiteQueen  *bool
	BlackQueen  *bool
	WhiteRooks  *int
	BlackRooks  *int
	WhiteMinors *int
	BlackMinors *int

	Archived      bool `gorm:"not null;default:false"`
	LastDrilledAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Game    Game           `gorm:"foreignKey:GameID"`
	History []DrillHistory `gorm:"foreignKey:DrillID"`
}

func (Drill) TableName() string {
	return "drills"
}

type DrillHistory struct {
	ID        int64    `gorm:"primaryKey;autoIncrement"`
	DrillID   int64    `gorm:"not null;index"`
	Result    string   `gorm:"type:text;not null"`
	Reason    *string  `gorm:"type:text"`
	Moves     []string `gorm:"serializer:json;type:jsonb"`
	FinalEval *float64
	TimeUsed  *float64
	Timestamp time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (DrillHistory) TableName() string {
	return "drill_history"
}

type ActiveUser struct {
	Username  string `gorm:"type:text;primaryKey"`
	CreatedAt time.Time
}

func (ActiveUser) TableName() string {
	return "active_users"
}
