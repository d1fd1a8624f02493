package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	challengeDto "paceline.app/community/internal/modules/challenge/dto"
	challengeRepo "paceline.app/community/internal/modules/challenge/repository"
	"paceline.app/community/internal/testutil"
	"paceline.app/community/pkg/apperror"
	commonDto "paceline.app/community/pkg/dto"
)

var testNow = time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*gorm.DB, *challengeService) {
	db := testutil.NewSeededDB(t)
	svc := NewChallengeService(challengeRepo.NewChallengeRepository(db)).(*challengeService)
	svc.now = func() time.Time { return testNow }
	return db, svc
}

func challengeBySeries(t *testing.T, db *gorm.DB, series string) entity.Challenge {
	t.Helper()
	var c entity.Challenge
	require.NoError(t, db.Where("series_id = ?", series).Take(&c).Error)
	return c
}

func participation(t *testing.T, db *gorm.DB, challengeID, userID uuid.UUID) entity.ChallengeParticipation {
	t.Helper()
	var p entity.ChallengeParticipation
	require.NoError(t, db.Where("challenge_id = ? AND user_id = ?", challengeID, userID).Take(&p).Error)
	return p
}

func TestGenerateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t)

	created, err := svc.Generate(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	created, err = svc.Generate(ctx, testNow)
	require.NoError(t, err)
	assert.Zero(t, created)

	// A week later only next week's races are new.
	created, err = svc.Generate(ctx, testNow.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var count int64
	require.NoError(t, db.Model(&entity.Challenge{}).Count(&count).Error)
	assert.Equal(t, int64(7), count)
}

func TestMatchRun(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t)
	_, err := svc.Generate(ctx, testNow)
	require.NoError(t, err)

	user := testutil.CreateUser(t, db, nil)
	race := challengeBySeries(t, db, "weekly_5k_2026-W42")
	monthly := challengeBySeries(t, db, "monthly_distance_2026-10")
	tenK := challengeBySeries(t, db, "weekly_10k_2026-W42")
	for _, c := range []entity.Challenge{race, monthly, tenK} {
		res, err := svc.Join(ctx, user.ID, c.ID)
		require.NoError(t, err)
		assert.True(t, res.Joined)
	}

	t.Run("race keeps the best time, distance accumulates", func(t *testing.T) {
		updated, err := svc.MatchRun(ctx, testutil.EligibleRun(t, user.ID, testNow, 6, 300))
		require.NoError(t, err)
		assert.Equal(t, 2, updated, "5K race and monthly distance")

		faster := testutil.EligibleRun(t, user.ID, testNow.Add(time.Hour), 5, 290)
		_, err = svc.MatchRun(ctx, faster)
		require.NoError(t, err)

		_, err = svc.MatchRun(ctx, testutil.EligibleRun(t, user.ID, testNow.Add(2*time.Hour), 5, 310))
		require.NoError(t, err)

		p := participation(t, db, race.ID, user.ID)
		require.NotNil(t, p.BestTimeSeconds)
		assert.Equal(t, 1450, *p.BestTimeSeconds)
		require.NotNil(t, p.BestRunID)
		assert.Equal(t, faster.ID, *p.BestRunID)

		assert.InDelta(t, 16.0, participation(t, db, monthly.ID, user.ID).TotalDistanceKM, 0.001)
		assert.Nil(t, participation(t, db, tenK.ID, user.ID).BestTimeSeconds, "5 km runs cannot score a 10K")
	})

	t.Run("ineligible and out of window runs are ignored", func(t *testing.T) {
		manual := testutil.EligibleRun(t, user.ID, testNow, 5, 200)
		manual.IsLeaderboardEligible = false
		manual.DataSource = entity.DataSourceManual
		updated, err := svc.MatchRun(ctx, manual)
		require.NoError(t, err)
		assert.Zero(t, updated)

		updated, err = svc.MatchRun(ctx, testutil.EligibleRun(t, user.ID, time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC), 5, 200))
		require.NoError(t, err)
		assert.Zero(t, updated)

		assert.Equal(t, 1450, *participation(t, db, race.ID, user.ID).BestTimeSeconds)
	})

	t.Run("malformed splits still count distance", func(t *testing.T) {
		run := testutil.EligibleRun(t, user.ID, testNow, 5, 200)
		run.KMSplits = datatypes.JSON(`[{"kilometer":1,"time":"??"}]`)
		updated, err := svc.MatchRun(ctx, run)
		require.NoError(t, err)
		assert.Equal(t, 1, updated)
		assert.InDelta(t, 21.0, participation(t, db, monthly.ID, user.ID).TotalDistanceKM, 0.001)
	})

	t.Run("users who did not join are not credited", func(t *testing.T) {
		stranger := testutil.CreateUser(t, db, nil)
		updated, err := svc.MatchRun(ctx, testutil.EligibleRun(t, stranger.ID, testNow, 5, 200))
		require.NoError(t, err)
		assert.Zero(t, updated)
	})
}

func TestListDetailAndJoin(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t)
	_, err := svc.Generate(ctx, testNow)
	require.NoError(t, err)

	alice := testutil.CreateUser(t, db, func(u *entity.User) { u.DisplayName = testutil.Ptr("Alice") })
	bob := testutil.CreateUser(t, db, func(u *entity.User) { u.Name = testutil.Ptr("Bob") })
	carol := testutil.CreateUser(t, db, nil)
	race := challengeBySeries(t, db, "weekly_5k_2026-W42")

	for _, u := range []*entity.User{alice, bob, carol} {
		_, err := svc.Join(ctx, u.ID, race.ID)
		require.NoError(t, err)
	}
	again, err := svc.Join(ctx, alice.ID, race.ID)
	require.NoError(t, err)
	assert.False(t, again.Joined)

	_, err = svc.Join(ctx, alice.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.MatchRun(ctx, testutil.EligibleRun(t, alice.ID, testNow, 5, 280))
	require.NoError(t, err)
	_, err = svc.MatchRun(ctx, testutil.EligibleRun(t, bob.ID, testNow, 5, 300))
	require.NoError(t, err)

	t.Run("active list", func(t *testing.T) {
		list, err := svc.List(ctx, bob.ID, challengeDto.ListChallengesQuery{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		for _, c := range list {
			assert.True(t, !c.StartsAt.After(testNow) && !c.EndsAt.Before(testNow))
			if c.ID == race.ID.String() {
				assert.True(t, c.IsJoined)
				assert.Equal(t, int64(3), c.ParticipantCount)
				require.NotNil(t, c.YourBestTimeSeconds)
				assert.Equal(t, 1500, *c.YourBestTimeSeconds)
			} else {
				assert.False(t, c.IsJoined)
			}
		}

		upcoming, err := svc.List(ctx, bob.ID, challengeDto.ListChallengesQuery{Status: "upcoming"})
		require.NoError(t, err)
		assert.Len(t, upcoming, 2)
	})

	t.Run("race detail ranks by time and skips unscored", func(t *testing.T) {
		detail, err := svc.Detail(ctx, bob.ID, race.ID, commonDto.PageQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), detail.ParticipantCount)

		board := detail.Leaderboard
		assert.Equal(t, int64(2), board.TotalParticipants)
		require.Len(t, board.Entries, 2)
		assert.Equal(t, "Alice", board.Entries[0].DisplayName)
		assert.Equal(t, 1400.0, board.Entries[0].Value)
		assert.Equal(t, "Bob", board.Entries[1].DisplayName)
		require.NotNil(t, board.YourRank)
		assert.Equal(t, 2, *board.YourRank)

		paged, err := svc.Detail(ctx, bob.ID, race.ID, commonDto.PageQuery{Limit: 1})
		require.NoError(t, err)
		require.Len(t, paged.Leaderboard.Entries, 1)
		assert.Equal(t, 2, *paged.Leaderboard.YourRank)

		unscored, err := svc.Detail(ctx, carol.ID, race.ID, commonDto.PageQuery{})
		require.NoError(t, err)
		assert.True(t, unscored.IsJoined)
		assert.Nil(t, unscored.Leaderboard.YourRank)
	})
}
