package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"paceline.app/community/internal/entity"
	activityService "paceline.app/community/internal/modules/activity/service"
	notifService "paceline.app/community/internal/modules/notification/service"
	pbDto "paceline.app/community/internal/modules/personalbest/dto"
	pbRepo "paceline.app/community/internal/modules/personalbest/repository"
	"paceline.app/community/pkg/splits"
)

// Result is one category's write for a run.
type Result struct {
	Category    string
	TimeSeconds int
	Outcome     pbRepo.Outcome
}

type PersonalBestService interface {
	// Track extracts the fastest segment for every distance category from an
	// eligible run's splits and records improvements. Ineligible runs and
	// runs without a readable split table produce no results.
	Track(ctx context.Context, run *entity.Run) ([]Result, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]pbDto.PersonalBestResponse, error)
}

type personalBestService struct {
	repo         pbRepo.PersonalBestRepository
	activity     activityService.ActivityService
	notification notifService.NotificationService
}

func NewPersonalBestService(repo pbRepo.PersonalBestRepository, activity activityService.ActivityService, notification notifService.NotificationService) PersonalBestService {
	return &personalBestService{
		repo:         repo,
		activity:     activity,
		notification: notification,
	}
}

func (s *personalBestService) Track(ctx context.Context, run *entity.Run) ([]Result, error) {
	if !run.IsLeaderboardEligible {
		return nil, nil
	}

	table, err := run.SplitTable()
	if err != nil || len(table) == 0 {
		return nil, nil
	}
	cumulative, err := splits.Cumulative(table)
	if err != nil {
		log.Printf("⚠️ [pb] run=%s has malformed splits: %v", run.ID, err)
		return nil, nil
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load distance categories: %w", err)
	}

	var (
		results []Result
		errs    []error
	)
	for _, cat := range categories {
		seconds, ok := splits.FastestWindow(cumulative, cat.TargetKM)
		if !ok {
			continue
		}

		outcome, err := s.repo.Upsert(ctx, &entity.PersonalBest{
			UserID:           run.UserID,
			DistanceCategory: cat.Code,
			TimeSeconds:      seconds,
			RunID:            run.ID,
			AchievedAt:       run.CompletedAt,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("upsert %s personal best: %w", cat.Code, err))
			continue
		}
		results = append(results, Result{Category: cat.Code, TimeSeconds: seconds, Outcome: outcome})

		// First records are not news, only improvements.
		if outcome == pbRepo.OutcomeImproved {
			payload := map[string]interface{}{"category": cat.Code, "time_seconds": seconds}
			if err := s.activity.Log(ctx, run.UserID, entity.ActivityPB, run.ID.String(), payload); err != nil {
				log.Printf("⚠️ [pb] %v", err)
			}
			s.notification.Publish(ctx, run.UserID, notifService.TypePersonalBest, payload)
		}
	}

	return results, errors.Join(errs...)
}

func (s *personalBestService) ListForUser(ctx context.Context, userID uuid.UUID) ([]pbDto.PersonalBestResponse, error) {
	pbs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]pbDto.PersonalBestResponse, 0, len(pbs))
	for _, pb := range pbs {
		out = append(out, pbDto.PersonalBestResponse{
			DistanceCategory: pb.DistanceCategory,
			TimeSeconds:      pb.TimeSeconds,
			RunID:            pb.RunID.String(),
			AchievedAt:       pb.AchievedAt,
		})
	}
	return out, nil
}
