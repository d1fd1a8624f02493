package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"paceline.app/community/internal/entity"
	"paceline.app/community/internal/metrics"
	achievementDto "paceline.app/community/internal/modules/achievement/dto"
	achievementRepo "paceline.app/community/internal/modules/achievement/repository"
	activityService "paceline.app/community/internal/modules/activity/service"
	notifService "paceline.app/community/internal/modules/notification/service"
)

type AchievementService interface {
	// EvaluateForUser unlocks everything the user currently qualifies for.
	// trigger is the run that prompted the check, nil for reconciliation.
	EvaluateForUser(ctx context.Context, userID uuid.UUID, trigger *entity.Run) ([]achievementDto.AchievementSummary, error)
	Reconcile(ctx context.Context, since time.Time) (*achievementDto.ReconcileReport, error)
	Catalog(ctx context.Context) ([]achievementDto.DefinitionResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID, unnotifiedOnly bool) ([]achievementDto.UserAchievementResponse, error)
	MarkNotified(ctx context.Context, userID uuid.UUID, req achievementDto.MarkNotifiedRequest) (*achievementDto.MarkNotifiedResponse, error)
}

type achievementService struct {
	repo         achievementRepo.AchievementRepository
	activity     activityService.ActivityService
	notification notifService.NotificationService
}

func NewAchievementService(repo achievementRepo.AchievementRepository, activity activityService.ActivityService, notification notifService.NotificationService) AchievementService {
	return &achievementService{
		repo:         repo,
		activity:     activity,
		notification: notification,
	}
}

func (s *achievementService) EvaluateForUser(ctx context.Context, userID uuid.UUID, trigger *entity.Run) ([]achievementDto.AchievementSummary, error) {
	defs, err := s.repo.Definitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load achievement definitions: %w", err)
	}
	unlocked, err := s.repo.UnlockedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load unlocked achievements: %w", err)
	}
	progress, err := s.repo.LoadProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load achievement progress: %w", err)
	}

	candidates := Evaluate(defs, Snapshot{
		Unlocked:      unlocked,
		LifetimeKM:    progress.LifetimeKM,
		LongestRunKM:  progress.LongestRunKM,
		RunCount:      progress.RunCount,
		LongestStreak: progress.LongestStreak,
		PersonalBests: progress.PersonalBests,
	})
	if len(candidates) == 0 {
		return nil, nil
	}

	unlockedAt := time.Now().UTC()
	var runID *uuid.UUID
	if trigger != nil {
		unlockedAt = trigger.CompletedAt.UTC()
		id := trigger.ID
		runID = &id
	}

	var (
		newly []achievementDto.AchievementSummary
		errs  []error
	)
	for _, def := range candidates {
		created, err := s.repo.Unlock(ctx, &entity.UserAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			UnlockedAt:    unlockedAt,
			RunID:         runID,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("unlock %s: %w", def.ID, err))
			continue
		}
		// A concurrent sync got there first.
		if !created {
			continue
		}

		summary := toSummary(def)
		newly = append(newly, summary)
		metrics.AchievementsUnlockedTotal.WithLabelValues(def.Category).Inc()

		payload := map[string]interface{}{"title": def.Title, "icon": def.Icon, "tier": def.Tier}
		if err := s.activity.Log(ctx, userID, entity.ActivityAchievement, def.ID, payload); err != nil {
			log.Printf("⚠️ [achievement] %v", err)
		}
		s.notification.Publish(ctx, userID, notifService.TypeAchievementUnlocked, summary)
	}

	return newly, errors.Join(errs...)
}

// Reconcile re-checks every user with runs stored since the given time.
// Unlocks are insert-if-absent, so overlapping passes are harmless.
func (s *achievementService) Reconcile(ctx context.Context, since time.Time) (*achievementDto.ReconcileReport, error) {
	users, err := s.repo.UsersWithRunsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list recently active users: %w", err)
	}

	report := &achievementDto.ReconcileReport{}
	var errs []error
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		newly, err := s.EvaluateForUser(ctx, userID, nil)
		report.UsersChecked++
		report.Unlocked += len(newly)
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
		}
		if len(newly) > 0 {
			log.Printf("🔁 [reconcile] user=%s unlocked %d missed achievements", userID, len(newly))
		}
	}

	return report, errors.Join(errs...)
}

func (s *achievementService) Catalog(ctx context.Context) ([]achievementDto.DefinitionResponse, error) {
	defs, err := s.repo.Definitions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]achievementDto.DefinitionResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, achievementDto.DefinitionResponse{
			AchievementSummary: toSummary(def),
			Threshold:          def.Threshold,
			DistanceCategory:   def.DistanceCategory,
			SortOrder:          def.SortOrder,
		})
	}
	return out, nil
}

func (s *achievementService) ListMine(ctx context.Context, userID uuid.UUID, unnotifiedOnly bool) ([]achievementDto.UserAchievementResponse, error) {
	rows, err := s.repo.ListByUser(ctx, userID, unnotifiedOnly)
	if err != nil {
		return nil, err
	}

	out := make([]achievementDto.UserAchievementResponse, 0, len(rows))
	for _, ua := range rows {
		item := achievementDto.UserAchievementResponse{
			AchievementSummary: toSummary(ua.Definition),
			UnlockedAt:         ua.UnlockedAt,
			Notified:           ua.Notified,
		}
		if ua.RunID != nil {
			id := ua.RunID.String()
			item.RunID = &id
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *achievementService) MarkNotified(ctx context.Context, userID uuid.UUID, req achievementDto.MarkNotifiedRequest) (*achievementDto.MarkNotifiedResponse, error) {
	marked, err := s.repo.MarkNotified(ctx, userID, req.AchievementIDs)
	if err != nil {
		return nil, err
	}
	return &achievementDto.MarkNotifiedResponse{Marked: marked}, nil
}

func toSummary(def entity.AchievementDefinition) achievementDto.AchievementSummary {
	return achievementDto.AchievementSummary{
		ID:          def.ID,
		Category:    def.Category,
		Title:       def.Title,
		Description: def.Description,
		Icon:        def.Icon,
		Tier:        def.Tier,
	}
}
