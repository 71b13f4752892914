package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blunderfixer/blunderfixer/internal/infrastructure/db/models"
)

// ActiveUserRepository is the roster of users eligible for scheduled
// re-sync.
type ActiveUserRepository struct {
	db *gorm.DB
}

func NewActiveUserRepository(db *gorm.DB) *ActiveUserRepository {
	return &ActiveUserRepository{db: db}
}

func (r *ActiveUserRepository) ListUsernames(ctx context.Context) ([]string, error) {
	var usernames []string
	err := r.db.WithContext(ctx).
		Model(&models.ActiveUser{}).
		Order("username").
		Pluck("username", &usernames).Error
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return usernames, nil
}

func (r *ActiveUserRepository) Add(ctx context.Context, username string) error {
	row := models.ActiveUser{Username: username}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("add active user: %w", err)
	}
	return nil
}
