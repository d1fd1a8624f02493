package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	leaderboardDto "paceline.app/community/internal/modules/leaderboard/dto"
	leaderboardRepo "paceline.app/community/internal/modules/leaderboard/repository"
	"paceline.app/community/internal/testutil"
	"paceline.app/community/pkg/apperror"
	commonDto "paceline.app/community/pkg/dto"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*gorm.DB, *leaderboardService) {
	db := testutil.NewSeededDB(t)
	svc := NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), nil, 0).(*leaderboardService)
	svc.now = func() time.Time { return testNow }
	return db, svc
}

func runner(t *testing.T, db *gorm.DB, name string, optIn bool, mutate func(u *entity.User)) *entity.User {
	return testutil.CreateUser(t, db, func(u *entity.User) {
		u.DisplayName = testutil.Ptr(name)
		u.LeaderboardOptIn = optIn
		if mutate != nil {
			mutate(u)
		}
	})
}

func addRun(t *testing.T, db *gorm.DB, userID uuid.UUID, at time.Time, km float64, eligible bool) {
	t.Helper()
	source := entity.DataSourceManual
	if eligible {
		source = entity.DataSourceBluetoothFTMS
	}
	require.NoError(t, db.Create(&entity.Run{
		ID:                    uuid.New(),
		UserID:                userID,
		CompletedAt:           at,
		DistanceKM:            km,
		DurationSeconds:       km * 330,
		AvgPaceSecPerKM:       330,
		DataSource:            source,
		IsLeaderboardEligible: eligible,
	}).Error)
}

func addPB(t *testing.T, db *gorm.DB, userID uuid.UUID, category string, seconds int) {
	t.Helper()
	require.NoError(t, db.Create(&entity.PersonalBest{
		UserID:           userID,
		DistanceCategory: category,
		TimeSeconds:      seconds,
		RunID:            uuid.New(),
		AchievedAt:       testNow,
	}).Error)
}

func TestYearlyDistanceRanks(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t)

	a := runner(t, db, "A", true, nil)
	b := runner(t, db, "B", true, nil)
	hidden := runner(t, db, "Hidden", false, nil)

	addRun(t, db, a.ID, testutil.Date(t, "2026-03-01"), 100, true)
	addRun(t, db, a.ID, testutil.Date(t, "2026-09-01"), 20, true)
	addRun(t, db, b.ID, testutil.Date(t, "2026-05-01"), 80, true)
	addRun(t, db, b.ID, testutil.Date(t, "2026-05-02"), 100, false)
	addRun(t, db, b.ID, testutil.Date(t, "2025-12-31"), 500, true)
	addRun(t, db, hidden.ID, testutil.Date(t, "2026-02-01"), 200, true)

	board, err := svc.YearlyDistance(ctx, a.ID, leaderboardDto.YearlyDistanceQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, board.TotalParticipants)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "A", board.Entries[0].DisplayName)
	assert.Equal(t, 120.0, board.Entries[0].Value)
	assert.Equal(t, 2, board.Entries[1].Rank)
	assert.Equal(t, 1, *board.YourRank)
	assert.Equal(t, 120.0, *board.YourValue)

	board, err = svc.YearlyDistance(ctx, b.ID, leaderboardDto.YearlyDistanceQuery{Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, 2, *board.YourRank)
	assert.Equal(t, 80.0, *board.YourValue)

	board, err = svc.YearlyDistance(ctx, hidden.ID, leaderboardDto.YearlyDistanceQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, board.TotalParticipants, "opted-out runners are not listed")
	require.NotNil(t, board.YourRank, "opted-out runners still see their own standing")
	assert.Equal(t, 1, *board.YourRank)
	assert.Equal(t, 200.0, *board.YourValue)

	board, err = svc.YearlyDistance(ctx, b.ID, leaderboardDto.YearlyDistanceQuery{Year: 2025})
	require.NoError(t, err)
	assert.EqualValues(t, 1, board.TotalParticipants)
	assert.Equal(t, 1, *board.YourRank)

	nobody := runner(t, db, "Nobody", true, nil)
	board, err = svc.YearlyDistance(ctx, nobody.ID, leaderboardDto.YearlyDistanceQuery{})
	require.NoError(t, err)
	assert.Nil(t, board.YourRank)
	assert.Nil(t, board.YourValue)
}

func TestRankIsIndependentOfPage(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t)

	var users []*entity.User
	for i, km := range []float64{50, 40, 30, 20, 10} {
		u := runner(t, db, string(rune('A'+i)), true, nil)
		addRun(t, db, u.ID, testutil.Date(t, "2026-06-01"), km, true)
		users = append(users, u)
	}

	board, err := svc.YearlyDistance(ctx, users[4].ID, leaderboardDto.YearlyDistanceQuery{
		PageQuery: commonDto.PageQuery{Limit: 2, Offset: 0},
	})
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.EqualValues(t, 5, board.TotalParticipants)
	assert.Equal(t, 5, *board.YourRank)

	board, err = svc.YearlyDistance(ctx, users[0].ID, leaderboardDto.YearlyDistanceQuery{
		PageQuery: commonDto.PageQuery{Limit: 2, Offset: 2},
	})
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, 3, board.Entries[0].Rank)
	assert.Equal(t, "C", board.Entries[0].DisplayName)
	assert.Equal(t, 1, *board.YourRank)
}

func TestBestTime(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t)

	fast := runner(t, db, "Fast", true, nil)
	mid := runner(t, db, "Mid", true, nil)
	slow := runner(t, db, "Slow", true, nil)
	ghost := runner(t, db, "Ghost", false, nil)

	addPB(t, db, fast.ID, "5K", 1180)
	addPB(t, db, mid.ID, "5K", 1300)
	addPB(t, db, slow.ID, "5K", 1500)
	addPB(t, db, ghost.ID, "5K", 1000)
	addPB(t, db, slow.ID, "10K", 2500)

	board, err := svc.BestTime(ctx, fast.ID, leaderboardDto.BestTimeQuery{Category: "5K"})
	require.NoError(t, err)
	assert.Equal(t, 1, *board.YourRank, "an opted-out faster runner does not push anyone down")
	assert.Equal(t, 1180.0, *board.YourValue)
	assert.EqualValues(t, 3, board.TotalParticipants)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, []string{"Fast", "Mid", "Slow"}, []string{
		board.Entries[0].DisplayName, board.Entries[1].DisplayName, board.Entries[2].DisplayName,
	})

	board, err = svc.BestTime(ctx, slow.ID, leaderboardDto.BestTimeQuery{Category: "5K"})
	require.NoError(t, err)
	assert.Equal(t, 3, *board.YourRank)

	board, err = svc.BestTime(ctx, fast.ID, leaderboardDto.BestTimeQuery{Category: "10K"})
	require.NoError(t, err)
	assert.Nil(t, board.YourRank)
	assert.EqualValues(t, 1, board.TotalParticipants)

	_, err = svc.BestTime(ctx, fast.ID, leaderboardDto.BestTimeQuery{Category: "3K"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestTiesAreStable(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t)

	first := runner(t, db, "First", true, func(u *entity.User) {
		u.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	})
	second := runner(t, db, "Second", true, func(u *entity.User) {
		u.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	})
	addPB(t, db, second.ID, "5K", 1400)
	addPB(t, db, first.ID, "5K", 1400)

	board, err := svc.BestTime(ctx, second.ID, leaderboardDto.BestTimeQuery{Category: "5K"})
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "First", board.Entries[0].DisplayName)
	assert.Equal(t, "Second", board.Entries[1].DisplayName)
	assert.Equal(t, 1, *board.YourRank, "equal times are not strictly better")
}

func TestDemographicFilters(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t)

	female30 := runner(t, db, "F30", true, func(u *entity.User) {
		u.Gender = testutil.Ptr("female")
		u.DateOfBirth = testutil.Ptr("1996-10-16")
	})
	female29 := runner(t, db, "F29", true, func(u *entity.User) {
		u.Gender = testutil.Ptr("female")
		u.DateOfBirth = testutil.Ptr("1996-10-17")
	})
	male35 := runner(t, db, "M35", true, func(u *entity.User) {
		u.Gender = testutil.Ptr("male")
		u.DateOfBirth = testutil.Ptr("1991-01-01")
	})
	noDOB := runner(t, db, "NoDOB", true, func(u *entity.User) {
		u.Gender = testutil.Ptr("female")
	})

	addRun(t, db, female30.ID, testutil.Date(t, "2026-04-01"), 30, true)
	addRun(t, db, female29.ID, testutil.Date(t, "2026-04-01"), 60, true)
	addRun(t, db, male35.ID, testutil.Date(t, "2026-04-01"), 90, true)
	addRun(t, db, noDOB.ID, testutil.Date(t, "2026-04-01"), 120, true)

	board, err := svc.YearlyDistance(ctx, female30.ID, leaderboardDto.YearlyDistanceQuery{
		Demographics: leaderboardDto.Demographics{Gender: "female"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, board.TotalParticipants)
	assert.Equal(t, 3, *board.YourRank)

	board, err = svc.YearlyDistance(ctx, female30.ID, leaderboardDto.YearlyDistanceQuery{
		Demographics: leaderboardDto.Demographics{AgeGroup: "30-39"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, board.TotalParticipants)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "M35", board.Entries[0].DisplayName)
	assert.Equal(t, 2, *board.YourRank)

	board, err = svc.YearlyDistance(ctx, female30.ID, leaderboardDto.YearlyDistanceQuery{
		Demographics: leaderboardDto.Demographics{Gender: "female", AgeGroup: "30-39"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, board.TotalParticipants)
	assert.Equal(t, 1, *board.YourRank)
}

func TestCacheKey(t *testing.T) {
	page := commonDto.PageQuery{Limit: 50}
	plain := cacheKey("best_time", "5K", leaderboardDto.Demographics{}, testNow, page)
	assert.Equal(t, "leaderboard:best_time:5K:g=:a=:-:50:0", plain)

	aged := cacheKey("best_time", "5K", leaderboardDto.Demographics{AgeGroup: "60+"}, testNow, page)
	assert.Contains(t, aged, "2026-10-16")
}
