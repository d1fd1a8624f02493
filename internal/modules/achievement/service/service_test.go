package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	achievementDto "paceline.app/community/internal/modules/achievement/dto"
	achievementRepo "paceline.app/community/internal/modules/achievement/repository"
	achievementService "paceline.app/community/internal/modules/achievement/service"
	activityRepo "paceline.app/community/internal/modules/activity/repository"
	activityService "paceline.app/community/internal/modules/activity/service"
	notifService "paceline.app/community/internal/modules/notification/service"
	"paceline.app/community/internal/testutil"
)

func setup(t *testing.T) (*gorm.DB, achievementService.AchievementService) {
	db := testutil.NewSeededDB(t)
	svc := achievementService.NewAchievementService(
		achievementRepo.NewAchievementRepository(db),
		activityService.NewActivityService(activityRepo.NewActivityRepository(db)),
		notifService.NewNotificationService(nil),
	)
	return db, svc
}

func insertRun(t *testing.T, db *gorm.DB, userID uuid.UUID, km float64, completedAt time.Time) *entity.Run {
	t.Helper()
	run := &entity.Run{
		ID:              uuid.New(),
		UserID:          userID,
		CompletedAt:     completedAt,
		DistanceKM:      km,
		DurationSeconds: km * 300,
		DataSource:      entity.DataSourceManual,
	}
	require.NoError(t, db.Create(run).Error)
	return run
}

func summaryIDs(items []achievementDto.AchievementSummary) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestEvaluateForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("first run unlocks once", func(t *testing.T) {
		db, svc := setup(t)
		user := testutil.CreateUser(t, db, nil)
		run := insertRun(t, db, user.ID, 5, testutil.Date(t, "2026-10-01"))

		newly, err := svc.EvaluateForUser(ctx, user.ID, run)
		require.NoError(t, err)
		assert.Equal(t, []string{"milestone_first_run", "milestone_first_5k"}, summaryIDs(newly))

		again, err := svc.EvaluateForUser(ctx, user.ID, run)
		require.NoError(t, err)
		assert.Empty(t, again)

		var rows []entity.UserAchievement
		require.NoError(t, db.Where("user_id = ?", user.ID).Find(&rows).Error)
		require.Len(t, rows, 2)
		require.NotNil(t, rows[0].RunID)
		assert.Equal(t, run.ID, *rows[0].RunID)
		assert.True(t, rows[0].UnlockedAt.Equal(run.CompletedAt))

		var logged int64
		require.NoError(t, db.Model(&entity.ActivityLog{}).Where("activity_type = ?", entity.ActivityAchievement).Count(&logged).Error)
		assert.Equal(t, int64(2), logged)
	})

	t.Run("performance reads the stored personal best", func(t *testing.T) {
		db, svc := setup(t)
		user := testutil.CreateUser(t, db, nil)
		run := insertRun(t, db, user.ID, 5, testutil.Date(t, "2026-10-01"))
		require.NoError(t, db.Create(&entity.PersonalBest{
			UserID: user.ID, DistanceCategory: "5K", TimeSeconds: 1190, RunID: run.ID, AchievedAt: run.CompletedAt,
		}).Error)

		newly, err := svc.EvaluateForUser(ctx, user.ID, run)
		require.NoError(t, err)
		assert.Contains(t, summaryIDs(newly), "perf_5k_sub25")
		assert.Contains(t, summaryIDs(newly), "perf_5k_sub20")
		assert.NotContains(t, summaryIDs(newly), "perf_10k_sub50")
	})

	t.Run("streak uses the longest streak", func(t *testing.T) {
		db, svc := setup(t)
		user := testutil.CreateUser(t, db, nil)
		run := insertRun(t, db, user.ID, 3, testutil.Date(t, "2026-10-20"))
		require.NoError(t, db.Create(&entity.UserStreak{
			UserID: user.ID, CurrentStreak: 1, LongestStreak: 8, LastRunDate: "2026-10-20", StreakStartDate: "2026-10-20",
		}).Error)

		newly, err := svc.EvaluateForUser(ctx, user.ID, run)
		require.NoError(t, err)
		assert.Contains(t, summaryIDs(newly), "streak_7")
		assert.NotContains(t, summaryIDs(newly), "streak_30")
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	db, svc := setup(t)

	missed := testutil.CreateUser(t, db, nil)
	for i := 0; i < 21; i++ {
		insertRun(t, db, missed.ID, 5, testutil.Date(t, "2026-09-01").AddDate(0, 0, i))
	}
	testutil.CreateUser(t, db, nil)

	report, err := svc.Reconcile(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, report.UsersChecked)
	// first run, first 5K, 100 km
	assert.Equal(t, 3, report.Unlocked)

	report, err = svc.Reconcile(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, report.UsersChecked)
	assert.Zero(t, report.Unlocked)

	mine, err := svc.ListMine(ctx, missed.ID, false)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	for _, item := range mine {
		assert.Nil(t, item.RunID)
	}
}

func TestMarkNotified(t *testing.T) {
	ctx := context.Background()
	db, svc := setup(t)
	user := testutil.CreateUser(t, db, nil)
	run := insertRun(t, db, user.ID, 10, testutil.Date(t, "2026-10-01"))

	_, err := svc.EvaluateForUser(ctx, user.ID, run)
	require.NoError(t, err)

	unnotified, err := svc.ListMine(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, unnotified, 3)
	assert.Equal(t, "milestone_first_10k", unnotified[0].ID, "ties on unlocked_at fall back to insertion order, newest first")

	res, err := svc.MarkNotified(ctx, user.ID, achievementDto.MarkNotifiedRequest{
		AchievementIDs: []string{"milestone_first_run", "milestone_first_5k", "distance_1000km"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Marked)

	res, err = svc.MarkNotified(ctx, user.ID, achievementDto.MarkNotifiedRequest{AchievementIDs: []string{"milestone_first_run"}})
	require.NoError(t, err)
	assert.Zero(t, res.Marked)

	unnotified, err = svc.ListMine(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, unnotified, 1)
	assert.Equal(t, "milestone_first_10k", unnotified[0].ID)
}
