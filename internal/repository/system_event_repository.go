package repository

import (
	"context"

	"spanish_learning_backend/internal/model"

	"gorm.io/gorm"
)

type SystemEventRepository struct {
	DB *gorm.DB
}

func NewSystemEventRepository(db *gorm.DB) *SystemEventRepository {
	return &SystemEventRepository{DB: db}
}

func (r *SystemEventRepository) Create(ctx context.Context, event *model.SystemEvent) error {
	return r.DB.WithContext(ctx).Create(event).Error
}

// ListRecent returns the newest events first, optionally filtered by level.
func (r *SystemEventRepository) ListRecent(ctx context.Context, level string, limit int) ([]model.SystemEvent, error) {
	var events []model.SystemEvent
	query := r.DB.WithContext(ctx).Order("id DESC")
	if level != "" {
		query = query.Where("level = ?", level)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}
