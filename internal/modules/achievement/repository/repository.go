package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"paceline.app/community/internal/entity"
)

// Progress is the aggregate state achievement rules are checked against.
type Progress struct {
	LifetimeKM    float64 `gorm:"column:lifetime_km"`
	LongestRunKM  float64 `gorm:"column:longest_run_km"`
	RunCount      int64   `gorm:"column:run_count"`
	LongestStreak int     `gorm:"-"`
	// PersonalBests maps distance category code to best time in seconds.
	PersonalBests map[string]int `gorm:"-"`
}

type AchievementRepository interface {
	Definitions(ctx context.Context) ([]entity.AchievementDefinition, error)
	UnlockedIDs(ctx context.Context, userID uuid.UUID) (map[string]bool, error)
	LoadProgress(ctx context.Context, userID uuid.UUID) (*Progress, error)
	Unlock(ctx context.Context, ua *entity.UserAchievement) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unnotifiedOnly bool) ([]entity.UserAchievement, error)
	MarkNotified(ctx context.Context, userID uuid.UUID, achievementIDs []string) (int64, error)
	UsersWithRunsSince(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Definitions(ctx context.Context) ([]entity.AchievementDefinition, error) {
	var defs []entity.AchievementDefinition
	if err := r.db.WithContext(ctx).Order("sort_order ASC").Find(&defs).Error; err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *achievementRepository) UnlockedIDs(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *achievementRepository) LoadProgress(ctx context.Context, userID uuid.UUID) (*Progress, error) {
	db := r.db.WithContext(ctx)

	var p Progress
	err := db.Model(&entity.Run{}).
		Select("COALESCE(SUM(distance_km), 0) AS lifetime_km, COALESCE(MAX(distance_km), 0) AS longest_run_km, COUNT(*) AS run_count").
		Where("user_id = ?", userID).
		Scan(&p).Error
	if err != nil {
		return nil, err
	}

	var longest []int
	if err := db.Model(&entity.UserStreak{}).Where("user_id = ?", userID).Pluck("longest_streak", &longest).Error; err != nil {
		return nil, err
	}
	if len(longest) > 0 {
		p.LongestStreak = longest[0]
	}

	var pbs []entity.PersonalBest
	if err := db.Where("user_id = ?", userID).Find(&pbs).Error; err != nil {
		return nil, err
	}
	p.PersonalBests = make(map[string]int, len(pbs))
	for _, pb := range pbs {
		p.PersonalBests[pb.DistanceCategory] = pb.TimeSeconds
	}

	return &p, nil
}

// Unlock inserts the pair if absent and reports whether this call created it.
func (r *achievementRepository) Unlock(ctx context.Context, ua *entity.UserAchievement) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(ua)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID uuid.UUID, unnotifiedOnly bool) ([]entity.UserAchievement, error) {
	query := r.db.WithContext(ctx).
		Preload("Definition").
		Where("user_id = ?", userID)
	if unnotifiedOnly {
		query = query.Where("notified = ?", false)
	}

	var out []entity.UserAchievement
	if err := query.Order("unlocked_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *achievementRepository) MarkNotified(ctx context.Context, userID uuid.UUID, achievementIDs []string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.UserAchievement{}).
		Where("user_id = ? AND achievement_id IN ? AND notified = ?", userID, achievementIDs, false).
		Update("notified", true)
	return result.RowsAffected, result.Error
}

func (r *achievementRepository) UsersWithRunsSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Run{}).
		Where("created_at >= ?", since).
		Distinct().
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
