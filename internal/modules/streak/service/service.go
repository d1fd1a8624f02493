package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	streakDto "paceline.app/community/internal/modules/streak/dto"
	streakRepo "paceline.app/community/internal/modules/streak/repository"
)

type StreakService interface {
	Record(ctx context.Context, userID uuid.UUID, completedAt time.Time) (*entity.UserStreak, error)
	Get(ctx context.Context, userID uuid.UUID) (*streakDto.StreakResponse, error)
}

type streakService struct {
	repo streakRepo.StreakRepository
}

func NewStreakService(repo streakRepo.StreakRepository) StreakService {
	return &streakService{repo: repo}
}

func (s *streakService) Record(ctx context.Context, userID uuid.UUID, completedAt time.Time) (*entity.UserStreak, error) {
	runDate := completedAt.UTC().Format(entity.DateLayout)
	return s.repo.Apply(ctx, userID, func(prev *entity.UserStreak) (entity.UserStreak, bool) {
		return Advance(prev, runDate)
	})
}

func (s *streakService) Get(ctx context.Context, userID uuid.UUID) (*streakDto.StreakResponse, error) {
	streak, err := s.repo.FindByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &streakDto.StreakResponse{}, nil
	}
	if err != nil {
		return nil, err
	}

	resp := &streakDto.StreakResponse{
		CurrentStreak: streak.CurrentStreak,
		LongestStreak: streak.LongestStreak,
	}
	if streak.LastRunDate != "" {
		resp.LastRunDate = &streak.LastRunDate
	}
	if streak.StreakStartDate != "" {
		resp.StreakStartDate = &streak.StreakStartDate
	}
	return resp, nil
}
