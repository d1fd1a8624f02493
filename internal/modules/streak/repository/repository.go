package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"paceline.app/community/internal/entity"
)

// Transition computes the next streak row from the locked current one
// (nil when the user has none). changed=false leaves the row untouched.
type Transition func(prev *entity.UserStreak) (next entity.UserStreak, changed bool)

type StreakRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*entity.UserStreak, error)
	Apply(ctx context.Context, userID uuid.UUID, next Transition) (*entity.UserStreak, error)
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*entity.UserStreak, error) {
	var streak entity.UserStreak
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&streak).Error; err != nil {
		return nil, err
	}
	return &streak, nil
}

var errLostInsertRace = errors.New("streak row created concurrently")

// Apply runs next against the user's row while holding it locked. Two first
// runs racing on an empty row both try to insert; the loser sees zero rows
// affected and retries against the winner's row.
func (r *streakRepository) Apply(ctx context.Context, userID uuid.UUID, next Transition) (*entity.UserStreak, error) {
	for attempt := 0; attempt < 2; attempt++ {
		out, err := r.apply(ctx, userID, next)
		if errors.Is(err, errLostInsertRace) {
			continue
		}
		return out, err
	}
	return nil, fmt.Errorf("update streak for %s: %w", userID, errLostInsertRace)
}

func (r *streakRepository) apply(ctx context.Context, userID uuid.UUID, next Transition) (*entity.UserStreak, error) {
	var out entity.UserStreak

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entity.UserStreak
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Take(&current).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			created, _ := next(nil)
			created.UserID = userID
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&created)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errLostInsertRace
			}
			out = created
			return nil
		}
		if err != nil {
			return err
		}

		updated, changed := next(&current)
		if !changed {
			out = current
			return nil
		}

		if err := tx.Model(&entity.UserStreak{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"current_streak":    updated.CurrentStreak,
				"longest_streak":    updated.LongestStreak,
				"last_run_date":     updated.LastRunDate,
				"streak_start_date": updated.StreakStartDate,
			}).Error; err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
