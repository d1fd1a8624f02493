package service

import (
	"context"
	"time"

	statDto "paceline.app/community/internal/modules/stat/dto"
	statRepo "paceline.app/community/internal/modules/stat/repository"
)

type StatService interface {
	Community(ctx context.Context) (*statDto.CommunityStats, error)
}

type statService struct {
	repo statRepo.StatRepository
	now  func() time.Time
}

func NewStatService(repo statRepo.StatRepository) StatService {
	return &statService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *statService) Community(ctx context.Context) (*statDto.CommunityStats, error) {
	return s.repo.Community(ctx, s.now().UTC())
}
