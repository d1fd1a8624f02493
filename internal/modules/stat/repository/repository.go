package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	statDto "paceline.app/community/internal/modules/stat/dto"
)

type StatRepository interface {
	Community(ctx context.Context, now time.Time) (*statDto.CommunityStats, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) Community(ctx context.Context, now time.Time) (*statDto.CommunityStats, error) {
	db := r.db.WithContext(ctx)
	stats := &statDto.CommunityStats{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&entity.User{})},
		{&stats.LeaderboardOptIns, db.Model(&entity.User{}).Where("leaderboard_opt_in = ?", true)},
		{&stats.TotalRuns, db.Model(&entity.Run{})},
		{&stats.EligibleRuns, db.Model(&entity.Run{}).Where("is_leaderboard_eligible = ?", true)},
		{&stats.RunsLast7Days, db.Model(&entity.Run{}).Where("completed_at >= ?", now.AddDate(0, 0, -7))},
		{&stats.ActiveChallenges, db.Model(&entity.Challenge{}).Where("starts_at <= ? AND ends_at >= ?", now, now)},
		{&stats.UpcomingEvents, db.Model(&entity.Event{}).Where("is_active = ? AND starts_at > ?", true, now)},
		{&stats.AchievementsUnlocked, db.Model(&entity.UserAchievement{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}
