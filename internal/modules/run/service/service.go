package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"paceline.app/community/internal/entity"
	"paceline.app/community/internal/metrics"
	achievementDto "paceline.app/community/internal/modules/achievement/dto"
	achievementService "paceline.app/community/internal/modules/achievement/service"
	activityService "paceline.app/community/internal/modules/activity/service"
	challengeService "paceline.app/community/internal/modules/challenge/service"
	eventService "paceline.app/community/internal/modules/event/service"
	pbService "paceline.app/community/internal/modules/personalbest/service"
	runDto "paceline.app/community/internal/modules/run/dto"
	runRepo "paceline.app/community/internal/modules/run/repository"
	shoeService "paceline.app/community/internal/modules/shoe/service"
	streakService "paceline.app/community/internal/modules/streak/service"
	"paceline.app/community/pkg/apperror"
	"paceline.app/community/pkg/sanitize"
)

type RunService interface {
	// SyncRuns stores each run once and runs the derived-state cascade for
	// every run that was not stored before. Cascade failures are reported
	// per step and never fail the batch.
	SyncRuns(ctx context.Context, userID uuid.UUID, req runDto.SyncRequest) (*runDto.SyncResponse, error)
	List(ctx context.Context, userID uuid.UUID, query runDto.ListRunsQuery) ([]runDto.RunResponse, error)
}

// Cascade holds the components a new run fans out to, in the order they run.
type Cascade struct {
	PersonalBests pbService.PersonalBestService
	Streaks       streakService.StreakService
	Achievements  achievementService.AchievementService
	Challenges    challengeService.ChallengeService
	Events        eventService.EventService
	Shoes         shoeService.ShoeService
	Activity      activityService.ActivityService
}

type runService struct {
	repo     runRepo.RunRepository
	cascade  Cascade
	maxBatch int
}

func NewRunService(repo runRepo.RunRepository, cascade Cascade, maxBatch int) RunService {
	return &runService{
		repo:     repo,
		cascade:  cascade,
		maxBatch: maxBatch,
	}
}

func (s *runService) SyncRuns(ctx context.Context, userID uuid.UUID, req runDto.SyncRequest) (*runDto.SyncResponse, error) {
	if s.maxBatch > 0 && len(req.Runs) > s.maxBatch {
		return nil, fmt.Errorf("at most %d runs per sync: %w", s.maxBatch, apperror.ErrInvalidInput)
	}

	// A stored run always gets its full cascade, even if the client hangs up.
	ctx = context.WithoutCancel(ctx)

	resp := &runDto.SyncResponse{NewlyUnlocked: []achievementDto.AchievementSummary{}}
	for _, payload := range req.Runs {
		run, err := toEntity(userID, payload)
		if err != nil {
			resp.FailedCount++
			metrics.RunsSyncedTotal.WithLabelValues(metrics.ResultFailed).Inc()
			log.Printf("⚠️ [sync] rejected run %s: %v", payload.ID, err)
			continue
		}

		created, err := s.repo.InsertIfAbsent(ctx, run)
		if err != nil {
			resp.FailedCount++
			metrics.RunsSyncedTotal.WithLabelValues(metrics.ResultFailed).Inc()
			log.Printf("❌ [sync] run=%s insert failed: %v", run.ID, err)
			continue
		}
		if !created {
			resp.AlreadyExistedCount++
			metrics.RunsSyncedTotal.WithLabelValues(metrics.ResultDuplicate).Inc()
			continue
		}

		resp.SyncedCount++
		metrics.RunsSyncedTotal.WithLabelValues(metrics.ResultInserted).Inc()

		report := s.Process(ctx, run)
		resp.NewlyUnlocked = append(resp.NewlyUnlocked, report.Unlocked...)
	}

	log.Printf("🏃 [sync] user=%s synced=%d existing=%d failed=%d unlocked=%d",
		userID, resp.SyncedCount, resp.AlreadyExistedCount, resp.FailedCount, len(resp.NewlyUnlocked))
	return resp, nil
}

// Process runs the cascade for a run that was just stored.
func (s *runService) Process(ctx context.Context, run *entity.Run) *RunReport {
	report := &RunReport{RunID: run.ID}
	c := s.cascade

	report.run(metrics.StepPersonalBests, func() (StepStatus, error) {
		if !run.IsLeaderboardEligible {
			return StepSkipped, nil
		}
		results, err := c.PersonalBests.Track(ctx, run)
		if err != nil {
			return StepFailed, err
		}
		if len(results) == 0 {
			return StepSkipped, nil
		}
		return StepSucceeded, nil
	})

	report.run(metrics.StepStreak, func() (StepStatus, error) {
		_, err := c.Streaks.Record(ctx, run.UserID, run.CompletedAt)
		return StepSucceeded, err
	})

	report.run(metrics.StepAchievements, func() (StepStatus, error) {
		unlocked, err := c.Achievements.EvaluateForUser(ctx, run.UserID, run)
		// Unlocks that did land are reported even when others failed.
		report.Unlocked = append(report.Unlocked, unlocked...)
		if err != nil {
			return StepFailed, err
		}
		if len(unlocked) == 0 {
			return StepSkipped, nil
		}
		return StepSucceeded, nil
	})

	report.run(metrics.StepChallenges, func() (StepStatus, error) {
		if !run.IsLeaderboardEligible {
			return StepSkipped, nil
		}
		n, err := c.Challenges.MatchRun(ctx, run)
		return countStatus(n), err
	})

	report.run(metrics.StepEvents, func() (StepStatus, error) {
		if !run.IsLeaderboardEligible {
			return StepSkipped, nil
		}
		n, err := c.Events.MatchRun(ctx, run)
		return countStatus(n), err
	})

	report.run(metrics.StepShoe, func() (StepStatus, error) {
		if run.ShoeID == nil {
			return StepSkipped, nil
		}
		ok, err := c.Shoes.AddMileage(ctx, run.UserID, *run.ShoeID, run.DistanceKM)
		if err != nil {
			return StepFailed, err
		}
		if !ok {
			return StepSkipped, nil
		}
		return StepSucceeded, nil
	})

	report.run(metrics.StepActivityLog, func() (StepStatus, error) {
		payload := map[string]interface{}{
			"distance_km":      run.DistanceKM,
			"duration_seconds": run.DurationSeconds,
		}
		return StepSucceeded, c.Activity.Log(ctx, run.UserID, entity.ActivityRun, run.ID.String(), payload)
	})

	return report
}

func (s *runService) List(ctx context.Context, userID uuid.UUID, query runDto.ListRunsQuery) ([]runDto.RunResponse, error) {
	page := query.PageQuery.Normalize()

	runs, err := s.repo.List(ctx, userID, query.Since, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}

	out := make([]runDto.RunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toResponse(run))
	}
	return out, nil
}

func countStatus(n int) StepStatus {
	if n == 0 {
		return StepSkipped
	}
	return StepSucceeded
}

func toEntity(userID uuid.UUID, p runDto.RunPayload) (*entity.Run, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid run id: %w", apperror.ErrInvalidInput)
	}

	source := p.DataSource
	if source == "" {
		source = entity.DataSourceManual
	}

	run := &entity.Run{
		ID:                    id,
		UserID:                userID,
		CompletedAt:           p.CompletedAt.UTC(),
		DistanceKM:            p.DistanceKM,
		DurationSeconds:       p.DurationSeconds,
		AvgPaceSecPerKM:       p.AvgPaceSecPerKM,
		KMSplits:              normalizeSplits(p.KMSplits),
		FeedbackRating:        p.FeedbackRating,
		Notes:                 sanitize.OptionalText(p.Notes),
		PlannedWorkoutTitle:   sanitize.OptionalText(p.PlannedWorkoutTitle),
		PlannedWorkoutType:    p.PlannedWorkoutType,
		PlannedDistanceKM:     p.PlannedDistanceKM,
		CompletionScore:       p.CompletionScore,
		PlanName:              sanitize.OptionalText(p.PlanName),
		WeekNumber:            p.WeekNumber,
		DataSource:            source,
		TreadmillBrand:        sanitize.OptionalText(p.TreadmillBrand),
		IsLeaderboardEligible: entity.IsEligible(source),
	}

	if p.ShoeID != nil {
		shoeID, err := uuid.Parse(*p.ShoeID)
		if err != nil {
			return nil, fmt.Errorf("invalid shoe id: %w", apperror.ErrInvalidInput)
		}
		run.ShoeID = &shoeID
	}
	return run, nil
}

// normalizeSplits unwraps a string-encoded table. Anything that is not valid
// JSON is dropped so the run still stores; timing steps then skip it.
func normalizeSplits(raw json.RawMessage) datatypes.JSON {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil
		}
		raw = []byte(inner)
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
	}

	if !json.Valid(raw) {
		return nil
	}
	return datatypes.JSON(raw)
}

func toResponse(run entity.Run) runDto.RunResponse {
	resp := runDto.RunResponse{
		ID:                    run.ID.String(),
		CompletedAt:           run.CompletedAt,
		DistanceKM:            run.DistanceKM,
		DurationSeconds:       run.DurationSeconds,
		AvgPaceSecPerKM:       run.AvgPaceSecPerKM,
		FeedbackRating:        run.FeedbackRating,
		Notes:                 run.Notes,
		PlannedWorkoutTitle:   run.PlannedWorkoutTitle,
		PlannedWorkoutType:    run.PlannedWorkoutType,
		PlannedDistanceKM:     run.PlannedDistanceKM,
		CompletionScore:       run.CompletionScore,
		PlanName:              run.PlanName,
		WeekNumber:            run.WeekNumber,
		DataSource:            run.DataSource,
		TreadmillBrand:        run.TreadmillBrand,
		IsLeaderboardEligible: run.IsLeaderboardEligible,
		SyncedAt:              run.CreatedAt,
	}
	if len(run.KMSplits) > 0 {
		resp.KMSplits = json.RawMessage(run.KMSplits)
	}
	if run.ShoeID != nil {
		id := run.ShoeID.String()
		resp.ShoeID = &id
	}
	return resp
}

