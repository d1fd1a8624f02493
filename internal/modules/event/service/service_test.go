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
	eventDto "paceline.app/community/internal/modules/event/dto"
	eventRepo "paceline.app/community/internal/modules/event/repository"
	searchService "paceline.app/community/internal/modules/search/service"
	"paceline.app/community/internal/testutil"
	"paceline.app/community/pkg/apperror"
	commonDto "paceline.app/community/pkg/dto"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type fakeIndex struct {
	hits    []string
	indexed []string
	deleted []string
}

func (f *fakeIndex) IndexEvent(ev *entity.Event) error {
	f.indexed = append(f.indexed, ev.ID.String())
	return nil
}

func (f *fakeIndex) DeleteEvent(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(query string, limit int) ([]string, error) {
	return f.hits, nil
}

func newTestService(t *testing.T, index searchService.EventIndex) (*gorm.DB, *eventService) {
	db := testutil.NewSeededDB(t)
	svc := NewEventService(eventRepo.NewEventRepository(db), index).(*eventService)
	svc.now = func() time.Time { return testNow }
	return db, svc
}

func createEvent(t *testing.T, db *gorm.DB, mutate func(ev *entity.Event)) *entity.Event {
	t.Helper()
	ev := &entity.Event{
		Title:      "Harbour 5K",
		EventType:  entity.EventVirtualRace,
		DistanceKM: testutil.Ptr(5.0),
		StartsAt:   testNow.Add(-24 * time.Hour),
		EndsAt:     testNow.Add(6 * 24 * time.Hour),
		IsActive:   true,
	}
	if mutate != nil {
		mutate(ev)
	}
	require.NoError(t, db.Create(ev).Error)
	return ev
}

func deactivate(t *testing.T, db *gorm.DB, ev *entity.Event) {
	t.Helper()
	require.NoError(t, db.Model(ev).Update("is_active", false).Error)
}

func registration(t *testing.T, db *gorm.DB, eventID, userID uuid.UUID) entity.EventRegistration {
	t.Helper()
	var reg entity.EventRegistration
	require.NoError(t, db.Where("event_id = ? AND user_id = ?", eventID, userID).Take(&reg).Error)
	return reg
}

func TestRegisterRespectsCapacity(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t, searchService.NewEventIndex(nil))
	ev := createEvent(t, db, func(ev *entity.Event) { ev.MaxParticipants = testutil.Ptr(2) })

	alice := testutil.CreateUser(t, db, nil)
	bob := testutil.CreateUser(t, db, nil)
	carol := testutil.CreateUser(t, db, nil)

	res, err := svc.Register(ctx, alice.ID, ev.ID)
	require.NoError(t, err)
	assert.True(t, res.Registered)

	res, err = svc.Register(ctx, alice.ID, ev.ID)
	require.NoError(t, err)
	assert.False(t, res.Registered, "second registration is a no-op")

	_, err = svc.Register(ctx, bob.ID, ev.ID)
	require.NoError(t, err)

	_, err = svc.Register(ctx, carol.ID, ev.ID)
	assert.ErrorIs(t, err, apperror.ErrEventFull)

	res, err = svc.Register(ctx, alice.ID, ev.ID)
	require.NoError(t, err, "a registered runner is not turned away from a full event")
	assert.False(t, res.Registered)

	out, err := svc.Unregister(ctx, alice.ID, ev.ID)
	require.NoError(t, err)
	assert.True(t, out.Unregistered)

	res, err = svc.Register(ctx, carol.ID, ev.ID)
	require.NoError(t, err)
	assert.True(t, res.Registered)

	var count int64
	require.NoError(t, db.Model(&entity.EventRegistration{}).Where("event_id = ?", ev.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestRegisterRejections(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t, searchService.NewEventIndex(nil))
	user := testutil.CreateUser(t, db, nil)

	closed := createEvent(t, db, func(ev *entity.Event) { ev.RegistrationClosesAt = testutil.Ptr(testNow.Add(-time.Minute)) })
	notOpen := createEvent(t, db, func(ev *entity.Event) { ev.RegistrationOpensAt = testutil.Ptr(testNow.Add(time.Hour)) })
	inactive := createEvent(t, db, nil)
	deactivate(t, db, inactive)

	_, err := svc.Register(ctx, user.ID, closed.ID)
	assert.ErrorIs(t, err, apperror.ErrRegistrationClosed)

	_, err = svc.Register(ctx, user.ID, notOpen.ID)
	assert.ErrorIs(t, err, apperror.ErrRegistrationNotOpen)

	_, err = svc.Register(ctx, user.ID, inactive.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Register(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	out, err := svc.Unregister(ctx, user.ID, closed.ID)
	require.NoError(t, err)
	assert.False(t, out.Unregistered)
}

func TestMatchRunRace(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t, searchService.NewEventIndex(nil))
	ev := createEvent(t, db, nil)
	user := testutil.CreateUser(t, db, nil)

	_, err := svc.Register(ctx, user.ID, ev.ID)
	require.NoError(t, err)

	run := testutil.EligibleRun(t, user.ID, testNow, 6, 300)
	updated, err := svc.MatchRun(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	reg := registration(t, db, ev.ID, user.ID)
	require.NotNil(t, reg.BestTimeSeconds)
	assert.Equal(t, 1500, *reg.BestTimeSeconds)
	assert.Equal(t, run.ID, *reg.BestRunID)

	slower := testutil.EligibleRun(t, user.ID, testNow.Add(time.Hour), 5, 320)
	updated, err = svc.MatchRun(ctx, slower)
	require.NoError(t, err)
	assert.Zero(t, updated)

	short := testutil.EligibleRun(t, user.ID, testNow.Add(2*time.Hour), 4, 200)
	updated, err = svc.MatchRun(ctx, short)
	require.NoError(t, err)
	assert.Zero(t, updated, "a run shorter than the course does not qualify")

	faster := testutil.EligibleRun(t, user.ID, testNow.Add(3*time.Hour), 5, 280)
	faster.IsLeaderboardEligible = false
	updated, err = svc.MatchRun(ctx, faster)
	require.NoError(t, err)
	assert.Zero(t, updated, "ineligible runs never score")

	reg = registration(t, db, ev.ID, user.ID)
	assert.Equal(t, 1500, *reg.BestTimeSeconds)
}

func TestMatchRunGroupRunAndWindow(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t, searchService.NewEventIndex(nil))
	group := createEvent(t, db, func(ev *entity.Event) {
		ev.EventType = entity.EventGroupRun
		ev.DistanceKM = nil
	})
	user := testutil.CreateUser(t, db, nil)

	_, err := svc.Register(ctx, user.ID, group.ID)
	require.NoError(t, err)

	// Deactivating an event keeps scoring for registered runners.
	deactivate(t, db, group)

	for _, at := range []time.Time{testNow, testNow.Add(time.Hour)} {
		_, err := svc.MatchRun(ctx, testutil.EligibleRun(t, user.ID, at, 8, 330))
		require.NoError(t, err)
	}

	outside := testutil.EligibleRun(t, user.ID, testNow.Add(30*24*time.Hour), 10, 330)
	updated, err := svc.MatchRun(ctx, outside)
	require.NoError(t, err)
	assert.Zero(t, updated)

	reg := registration(t, db, group.ID, user.ID)
	assert.InDelta(t, 16.0, reg.TotalDistanceKM, 0.001)

	require.NoError(t, db.Model(&reg).Update("status", entity.RegistrationDNS).Error)
	updated, err = svc.MatchRun(ctx, testutil.EligibleRun(t, user.ID, testNow.Add(2*time.Hour), 5, 330))
	require.NoError(t, err)
	assert.Zero(t, updated, "only registered status scores")
}

func TestDetailIncludesStandings(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t, searchService.NewEventIndex(nil))
	ev := createEvent(t, db, nil)

	alice := testutil.CreateUser(t, db, func(u *entity.User) { u.DisplayName = testutil.Ptr("Alice") })
	bob := testutil.CreateUser(t, db, func(u *entity.User) { u.DisplayName = testutil.Ptr("Bob") })
	for _, u := range []*entity.User{alice, bob} {
		_, err := svc.Register(ctx, u.ID, ev.ID)
		require.NoError(t, err)
	}

	_, err := svc.MatchRun(ctx, testutil.EligibleRun(t, alice.ID, testNow, 5, 290))
	require.NoError(t, err)
	_, err = svc.MatchRun(ctx, testutil.EligibleRun(t, bob.ID, testNow, 5, 310))
	require.NoError(t, err)

	detail, err := svc.Detail(ctx, bob.ID, ev.ID, commonDto.PageQuery{})
	require.NoError(t, err)

	assert.EqualValues(t, 2, detail.ParticipantCount)
	assert.True(t, detail.IsRegistered)
	require.NotNil(t, detail.YourBestTimeSeconds)
	assert.Equal(t, 1550, *detail.YourBestTimeSeconds)

	require.Len(t, detail.Leaderboard.Entries, 2)
	assert.Equal(t, "Alice", detail.Leaderboard.Entries[0].DisplayName)
	assert.Equal(t, 1450.0, detail.Leaderboard.Entries[0].Value)
	require.NotNil(t, detail.Leaderboard.YourRank)
	assert.Equal(t, 2, *detail.Leaderboard.YourRank)

	deactivate(t, db, ev)
	_, err = svc.Detail(ctx, bob.ID, ev.ID, commonDto.PageQuery{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListByStatus(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t, searchService.NewEventIndex(nil))
	user := testutil.CreateUser(t, db, nil)

	running := createEvent(t, db, func(ev *entity.Event) { ev.Title = "Running" })
	upcoming := createEvent(t, db, func(ev *entity.Event) {
		ev.Title = "Upcoming"
		ev.StartsAt = testNow.Add(10 * 24 * time.Hour)
		ev.EndsAt = testNow.Add(11 * 24 * time.Hour)
	})
	hidden := createEvent(t, db, func(ev *entity.Event) { ev.Title = "Hidden" })
	deactivate(t, db, hidden)

	active, err := svc.List(ctx, user.ID, eventDto.ListEventsQuery{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, running.ID.String(), active[0].ID)

	next, err := svc.List(ctx, user.ID, eventDto.ListEventsQuery{Status: eventRepo.StatusUpcoming})
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, upcoming.ID.String(), next[0].ID)

	all, err := svc.ListAll(ctx, eventDto.ListEventsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3, "admins see inactive events")
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to title match without an index", func(t *testing.T) {
		db, svc := newTestService(t, searchService.NewEventIndex(nil))
		user := testutil.CreateUser(t, db, nil)
		createEvent(t, db, func(ev *entity.Event) { ev.Title = "Harbour Half" })
		createEvent(t, db, func(ev *entity.Event) { ev.Title = "City 10K" })

		got, err := svc.Search(ctx, user.ID, eventDto.SearchEventsQuery{Q: "harbour"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Harbour Half", got[0].Title)
	})

	t.Run("keeps index ranking and drops inactive hits", func(t *testing.T) {
		index := &fakeIndex{}
		db, svc := newTestService(t, index)
		user := testutil.CreateUser(t, db, nil)
		a := createEvent(t, db, func(ev *entity.Event) { ev.Title = "A" })
		b := createEvent(t, db, func(ev *entity.Event) { ev.Title = "B" })
		gone := createEvent(t, db, func(ev *entity.Event) { ev.Title = "Gone" })
		deactivate(t, db, gone)

		index.hits = []string{b.ID.String(), gone.ID.String(), "not-a-uuid", a.ID.String()}

		got, err := svc.Search(ctx, user.ID, eventDto.SearchEventsQuery{Q: "x"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "B", got[0].Title)
		assert.Equal(t, "A", got[1].Title)
	})
}

func TestAdminLifecycle(t *testing.T) {
	ctx := context.Background()
	index := &fakeIndex{}
	db, svc := newTestService(t, index)
	admin := testutil.CreateUser(t, db, nil)
	runner := testutil.CreateUser(t, db, nil)

	_, err := svc.Create(ctx, admin.ID, eventDto.CreateEventRequest{
		Title:     "No distance",
		EventType: entity.EventRace,
		StartsAt:  testNow,
		EndsAt:    testNow.Add(time.Hour),
	})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	created, err := svc.Create(ctx, admin.ID, eventDto.CreateEventRequest{
		Title:       "<b>Night</b> 10K",
		Description: testutil.Ptr("<script>x</script>Lights on"),
		EventType:   entity.EventRace,
		DistanceKM:  testutil.Ptr(10.0),
		StartsAt:    testNow,
		EndsAt:      testNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "Night 10K", created.Title)
	require.NotNil(t, created.Description)
	assert.Equal(t, "Lights on", *created.Description)
	assert.True(t, created.IsActive)
	assert.Contains(t, index.indexed, created.ID)

	eventID := uuid.MustParse(created.ID)
	updated, err := svc.Update(ctx, eventID, eventDto.UpdateEventRequest{MaxParticipants: testutil.Ptr(50)})
	require.NoError(t, err)
	assert.Equal(t, 50, *updated.MaxParticipants)

	_, err = svc.Register(ctx, runner.ID, eventID)
	require.NoError(t, err)

	regs, err := svc.ListRegistrations(ctx, eventID, commonDto.PageQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, regs.Meta.TotalItems)
	require.Len(t, regs.Data, 1)
	assert.Equal(t, runner.Email, regs.Data[0].Email)

	require.NoError(t, svc.Deactivate(ctx, eventID))
	var stored entity.Event
	require.NoError(t, db.Where("id = ?", eventID).Take(&stored).Error)
	assert.False(t, stored.IsActive)

	require.NoError(t, svc.Delete(ctx, eventID))
	assert.Contains(t, index.deleted, created.ID)

	var remaining int64
	require.NoError(t, db.Model(&entity.EventRegistration{}).Where("event_id = ?", eventID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	err = svc.Delete(ctx, eventID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
