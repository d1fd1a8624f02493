package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	adminDto "paceline.app/community/internal/modules/admin/dto"
	userRepo "paceline.app/community/internal/modules/user/repository"
	"paceline.app/community/pkg/apperror"
)

// JobRunner is the part of the scheduler admins can drive.
type JobRunner interface {
	RunByName(ctx context.Context, name string) error
	Jobs() []string
}

type AdminService interface {
	SetAdmin(ctx context.Context, actorID, userID uuid.UUID, isAdmin bool) error
	ListJobs() []string
	RunJob(ctx context.Context, name string) (*adminDto.JobRunResponse, error)
}

type adminService struct {
	userRepo userRepo.UserRepository
	jobs     JobRunner
}

func NewAdminService(userRepo userRepo.UserRepository, jobs JobRunner) AdminService {
	return &adminService{
		userRepo: userRepo,
		jobs:     jobs,
	}
}

func (s *adminService) SetAdmin(ctx context.Context, actorID, userID uuid.UUID, isAdmin bool) error {
	if actorID == userID && !isAdmin {
		return fmt.Errorf("admins cannot revoke their own access: %w", apperror.ErrBadRequest)
	}

	err := s.userRepo.UpdateCommunitySettings(ctx, userID, map[string]interface{}{"is_admin": isAdmin})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	log.Printf("🔐 Admin %s set is_admin=%t for user %s", actorID, isAdmin, userID)
	return nil
}

func (s *adminService) ListJobs() []string {
	if s.jobs == nil {
		return []string{}
	}
	return s.jobs.Jobs()
}

func (s *adminService) RunJob(ctx context.Context, name string) (*adminDto.JobRunResponse, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("job %q not found: %w", name, apperror.ErrNotFound)
	}

	start := time.Now()
	if err := s.jobs.RunByName(ctx, name); err != nil {
		return nil, err
	}
	return &adminDto.JobRunResponse{Job: name, DurationMS: time.Since(start).Milliseconds()}, nil
}
