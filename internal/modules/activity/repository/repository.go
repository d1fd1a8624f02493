package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
)

type ActivityRepository interface {
	Create(ctx context.Context, entry *entity.ActivityLog) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.ActivityLog, int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, entry *entity.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.ActivityLog, int64, error) {
	var (
		entries []entity.ActivityLog
		total   int64
	)

	query := r.db.WithContext(ctx).Model(&entity.ActivityLog{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
