package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"paceline.app/community/internal/entity"
)

type RunRepository interface {
	// InsertIfAbsent stores the run unless its id already exists and
	// reports whether a row was written.
	InsertIfAbsent(ctx context.Context, run *entity.Run) (bool, error)
	List(ctx context.Context, userID uuid.UUID, since *time.Time, limit, offset int) ([]entity.Run, error)
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) InsertIfAbsent(ctx context.Context, run *entity.Run) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(run)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *runRepository) List(ctx context.Context, userID uuid.UUID, since *time.Time, limit, offset int) ([]entity.Run, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if since != nil {
		query = query.Where("completed_at > ?", since.UTC())
	}

	var runs []entity.Run
	if err := query.Order("completed_at DESC").Order("id ASC").Limit(limit).Offset(offset).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
