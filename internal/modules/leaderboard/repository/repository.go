package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
)

// Filter narrows the ranked population. Only opted-in users are ever ranked.
type Filter struct {
	Gender *string
	// Dates of birth as YYYY-MM-DD. BornAfter is exclusive, BornOnOrBefore
	// inclusive.
	BornAfter      *string
	BornOnOrBefore *string
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	q = q.Where("users.leaderboard_opt_in = ?", true)
	if f.Gender != nil {
		q = q.Where("users.gender = ?", *f.Gender)
	}
	if f.BornAfter != nil || f.BornOnOrBefore != nil {
		q = q.Where("users.date_of_birth IS NOT NULL")
	}
	if f.BornAfter != nil {
		q = q.Where("users.date_of_birth > ?", *f.BornAfter)
	}
	if f.BornOnOrBefore != nil {
		q = q.Where("users.date_of_birth <= ?", *f.BornOnOrBefore)
	}
	return q
}

type Row struct {
	UserID          uuid.UUID
	DisplayName     *string
	Name            *string
	ProfilePhotoURL *string
	Value           float64
}

type LeaderboardRepository interface {
	CategoryExists(ctx context.Context, code string) (bool, error)

	YearlyDistancePage(ctx context.Context, year int, f Filter, limit, offset int) ([]Row, int64, error)
	YearlyDistanceOf(ctx context.Context, userID uuid.UUID, year int) (float64, error)
	// YearlyDistanceAhead counts ranked users with strictly more distance.
	YearlyDistanceAhead(ctx context.Context, year int, f Filter, km float64) (int64, error)

	BestTimePage(ctx context.Context, category string, f Filter, limit, offset int) ([]Row, int64, error)
	BestTimeOf(ctx context.Context, userID uuid.UUID, category string) (*int, error)
	// BestTimeAhead counts ranked users with a strictly faster time.
	BestTimeAhead(ctx context.Context, category string, f Filter, seconds int) (int64, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func yearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

func (r *leaderboardRepository) CategoryExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.DistanceCategory{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *leaderboardRepository) yearlyTotals(db *gorm.DB, year int, f Filter) *gorm.DB {
	start, end := yearBounds(year)
	q := db.Table("runs").
		Select("runs.user_id AS user_id, SUM(runs.distance_km) AS value").
		Joins("JOIN users ON users.id = runs.user_id").
		Where("runs.is_leaderboard_eligible = ?", true).
		Where("runs.completed_at >= ? AND runs.completed_at < ?", start, end)
	return f.apply(q).Group("runs.user_id")
}

func (r *leaderboardRepository) bestTimes(db *gorm.DB, category string, f Filter) *gorm.DB {
	q := db.Table("personal_bests").
		Select("personal_bests.user_id AS user_id, personal_bests.time_seconds AS value").
		Joins("JOIN users ON users.id = personal_bests.user_id").
		Where("personal_bests.distance_category = ?", category)
	return f.apply(q)
}

func page(db *gorm.DB, ranked *gorm.DB, order string, limit, offset int) ([]Row, int64, error) {
	var total int64
	if err := db.Table("(?) AS ranked", ranked).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Row
	err := db.Table("(?) AS ranked", ranked).
		Select("ranked.user_id, users.display_name, users.name, users.profile_photo_url, ranked.value").
		Joins("JOIN users ON users.id = ranked.user_id").
		Order(order).
		Order("ranked.user_id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *leaderboardRepository) YearlyDistancePage(ctx context.Context, year int, f Filter, limit, offset int) ([]Row, int64, error) {
	db := r.db.WithContext(ctx)
	return page(db, r.yearlyTotals(db, year, f), "ranked.value DESC", limit, offset)
}

func (r *leaderboardRepository) YearlyDistanceOf(ctx context.Context, userID uuid.UUID, year int) (float64, error) {
	start, end := yearBounds(year)
	var total float64
	err := r.db.WithContext(ctx).
		Model(&entity.Run{}).
		Select("COALESCE(SUM(distance_km), 0)").
		Where("user_id = ? AND is_leaderboard_eligible = ?", userID, true).
		Where("completed_at >= ? AND completed_at < ?", start, end).
		Scan(&total).Error
	return total, err
}

func (r *leaderboardRepository) YearlyDistanceAhead(ctx context.Context, year int, f Filter, km float64) (int64, error) {
	db := r.db.WithContext(ctx)
	var ahead int64
	err := db.Table("(?) AS ranked", r.yearlyTotals(db, year, f)).
		Where("ranked.value > ?", km).
		Count(&ahead).Error
	return ahead, err
}

func (r *leaderboardRepository) BestTimePage(ctx context.Context, category string, f Filter, limit, offset int) ([]Row, int64, error) {
	db := r.db.WithContext(ctx)
	return page(db, r.bestTimes(db, category, f), "ranked.value ASC", limit, offset)
}

func (r *leaderboardRepository) BestTimeOf(ctx context.Context, userID uuid.UUID, category string) (*int, error) {
	var seconds []int
	err := r.db.WithContext(ctx).
		Model(&entity.PersonalBest{}).
		Where("user_id = ? AND distance_category = ?", userID, category).
		Limit(1).
		Pluck("time_seconds", &seconds).Error
	if err != nil || len(seconds) == 0 {
		return nil, err
	}
	return &seconds[0], nil
}

func (r *leaderboardRepository) BestTimeAhead(ctx context.Context, category string, f Filter, seconds int) (int64, error) {
	db := r.db.WithContext(ctx)
	var ahead int64
	err := db.Table("(?) AS ranked", r.bestTimes(db, category, f)).
		Where("ranked.value < ?", seconds).
		Count(&ahead).Error
	return ahead, err
}
