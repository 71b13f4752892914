package models

import "time"

type SyncJob struct {
	ID           string  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string  `gorm:"type:text;not null;index"`
	Status       string  `gorm:"type:text;not null"`
	Processed    int64   `gorm:"not null;default:0"`
	Total        *int64  `gorm:""`
	Skipped      int64   `gorm:"not null;default:0"`
	ErrorClass   *string `gorm:"type:text"`
	ErrorMessage *string `gorm:"type:text"`
	HeartbeatAt  *time.Time
	LeaseExpires *time.Time `gorm:"column:lease_expires_at"`
	StartedAt    *time.Time
	FinishedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SyncJob) TableName() string {
	return "sync_jobs"
}
