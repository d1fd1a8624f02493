package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"paceline.app/community/internal/entity"
)

// Outcome of a conditional personal best write.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeCreated
	OutcomeImproved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeImproved:
		return "improved"
	default:
		return "unchanged"
	}
}

type PersonalBestRepository interface {
	Categories(ctx context.Context) ([]entity.DistanceCategory, error)
	Upsert(ctx context.Context, pb *entity.PersonalBest) (Outcome, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.PersonalBest, error)
}

type personalBestRepository struct {
	db *gorm.DB
}

func NewPersonalBestRepository(db *gorm.DB) PersonalBestRepository {
	return &personalBestRepository{db: db}
}

func (r *personalBestRepository) Categories(ctx context.Context) ([]entity.DistanceCategory, error) {
	var categories []entity.DistanceCategory
	if err := r.db.WithContext(ctx).Order("sort_order ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Upsert writes pb in one statement: insert when the (user, category) pair
// is new, otherwise update only when the new time is strictly lower.
// improvement_count tells the two write paths apart in the RETURNING row;
// no returned row means the stored time was already as good.
func (r *personalBestRepository) Upsert(ctx context.Context, pb *entity.PersonalBest) (Outcome, error) {
	pb.ImprovementCount = 0

	result := r.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "distance_category"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"time_seconds":      gorm.Expr("excluded.time_seconds"),
				"run_id":            gorm.Expr("excluded.run_id"),
				"achieved_at":       gorm.Expr("excluded.achieved_at"),
				"improvement_count": gorm.Expr("personal_bests.improvement_count + 1"),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("excluded.time_seconds < personal_bests.time_seconds"),
			}},
		},
		clause.Returning{Columns: []clause.Column{{Name: "improvement_count"}}},
	).Create(pb)
	if result.Error != nil {
		return OutcomeUnchanged, result.Error
	}

	switch {
	case result.RowsAffected == 0:
		return OutcomeUnchanged, nil
	case pb.ImprovementCount == 0:
		return OutcomeCreated, nil
	default:
		return OutcomeImproved, nil
	}
}

func (r *personalBestRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.PersonalBest, error) {
	var pbs []entity.PersonalBest
	err := r.db.WithContext(ctx).
		Table("personal_bests").
		Select("personal_bests.*").
		Joins("JOIN distance_categories ON distance_categories.code = personal_bests.distance_category").
		Where("personal_bests.user_id = ?", userID).
		Order("distance_categories.sort_order ASC").
		Find(&pbs).Error
	if err != nil {
		return nil, err
	}
	return pbs, nil
}
