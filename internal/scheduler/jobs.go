package scheduler

import (
	"context"
	"log"
	"time"

	"paceline.app/community/internal/metrics"
	achievementService "paceline.app/community/internal/modules/achievement/service"
	challengeService "paceline.app/community/internal/modules/challenge/service"
)

// ChallengeGenerationJob makes sure the current and upcoming system
// challenges exist. Generation is insert-if-absent, so reruns are safe.
type ChallengeGenerationJob struct {
	service  challengeService.ChallengeService
	schedule string
	now      func() time.Time
}

func NewChallengeGenerationJob(service challengeService.ChallengeService, schedule string) *ChallengeGenerationJob {
	return &ChallengeGenerationJob{service: service, schedule: schedule, now: time.Now}
}

func (j *ChallengeGenerationJob) Name() string     { return metrics.JobChallengeGeneration }
func (j *ChallengeGenerationJob) Schedule() string { return j.schedule }

func (j *ChallengeGenerationJob) Execute(ctx context.Context) error {
	created, err := j.service.Generate(ctx, j.now().UTC())
	if err != nil {
		return err
	}
	log.Printf("📅 [%s] %d new challenges", j.Name(), created)
	return nil
}

// ReconcileJob re-evaluates achievements for athletes with recent runs, so
// unlocks lost to a failed cascade step are eventually granted.
type ReconcileJob struct {
	service  achievementService.AchievementService
	schedule string
	lookback time.Duration
	now      func() time.Time
}

func NewReconcileJob(service achievementService.AchievementService, schedule string, lookback time.Duration) *ReconcileJob {
	return &ReconcileJob{service: service, schedule: schedule, lookback: lookback, now: time.Now}
}

func (j *ReconcileJob) Name() string     { return metrics.JobReconcile }
func (j *ReconcileJob) Schedule() string { return j.schedule }

func (j *ReconcileJob) Execute(ctx context.Context) error {
	report, err := j.service.Reconcile(ctx, j.now().UTC().Add(-j.lookback))
	if report != nil {
		log.Printf("🔁 [%s] checked %d users, unlocked %d", j.Name(), report.UsersChecked, report.Unlocked)
	}
	return err
}
