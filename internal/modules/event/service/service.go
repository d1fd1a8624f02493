package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	eventDto "paceline.app/community/internal/modules/event/dto"
	eventRepo "paceline.app/community/internal/modules/event/repository"
	searchService "paceline.app/community/internal/modules/search/service"
	"paceline.app/community/pkg/apperror"
	commonDto "paceline.app/community/pkg/dto"
	"paceline.app/community/pkg/sanitize"
	"paceline.app/community/pkg/splits"
)

const defaultSearchLimit = 20

type EventService interface {
	// MatchRun credits an eligible run to every event the user is
	// registered for whose window contains it.
	MatchRun(ctx context.Context, run *entity.Run) (int, error)

	List(ctx context.Context, userID uuid.UUID, query eventDto.ListEventsQuery) ([]eventDto.EventResponse, error)
	Detail(ctx context.Context, userID, eventID uuid.UUID, page commonDto.PageQuery) (*eventDto.EventDetailResponse, error)
	Search(ctx context.Context, userID uuid.UUID, query eventDto.SearchEventsQuery) ([]eventDto.EventResponse, error)
	Register(ctx context.Context, userID, eventID uuid.UUID) (*eventDto.RegisterResponse, error)
	Unregister(ctx context.Context, userID, eventID uuid.UUID) (*eventDto.UnregisterResponse, error)

	Create(ctx context.Context, adminID uuid.UUID, req eventDto.CreateEventRequest) (*eventDto.EventResponse, error)
	Update(ctx context.Context, eventID uuid.UUID, req eventDto.UpdateEventRequest) (*eventDto.EventResponse, error)
	Deactivate(ctx context.Context, eventID uuid.UUID) error
	Delete(ctx context.Context, eventID uuid.UUID) error
	ListAll(ctx context.Context, query eventDto.ListEventsQuery) ([]eventDto.EventResponse, error)
	ListRegistrations(ctx context.Context, eventID uuid.UUID, page commonDto.PageQuery) (*eventDto.RegistrationListResponse, error)
}

type eventService struct {
	repo  eventRepo.EventRepository
	index searchService.EventIndex
	now   func() time.Time
}

func NewEventService(repo eventRepo.EventRepository, index searchService.EventIndex) EventService {
	return &eventService{
		repo:  repo,
		index: index,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *eventService) MatchRun(ctx context.Context, run *entity.Run) (int, error) {
	if !run.IsLeaderboardEligible {
		return 0, nil
	}

	matches, err := s.repo.Matching(ctx, run.UserID, run.CompletedAt)
	if err != nil {
		return 0, fmt.Errorf("find matching events: %w", err)
	}
	if len(matches) == 0 {
		return 0, nil
	}

	table, tableErr := run.SplitTable()

	var (
		updated int
		errs    []error
	)
	for _, m := range matches {
		switch m.EventType {
		case entity.EventRace, entity.EventVirtualRace:
			if m.DistanceKM == nil || tableErr != nil {
				continue
			}
			seconds, ok := splits.QualifyingTime(run.DistanceKM, *m.DistanceKM, table)
			if !ok {
				continue
			}
			improved, err := s.repo.ImproveBestTime(ctx, m.RegistrationID, seconds, run.ID)
			if err != nil {
				errs = append(errs, fmt.Errorf("event %s: %w", m.EventID, err))
				continue
			}
			if improved {
				updated++
			}

		case entity.EventGroupRun:
			if err := s.repo.AddDistance(ctx, m.RegistrationID, run.DistanceKM); err != nil {
				errs = append(errs, fmt.Errorf("event %s: %w", m.EventID, err))
				continue
			}
			updated++
		}
	}

	return updated, errors.Join(errs...)
}

func (s *eventService) List(ctx context.Context, userID uuid.UUID, query eventDto.ListEventsQuery) ([]eventDto.EventResponse, error) {
	page := query.PageQuery.Normalize()
	status := query.Status
	if status == "" {
		status = eventRepo.StatusActive
	}

	events, err := s.repo.List(ctx, status, s.now(), false, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, userID, events)
}

func (s *eventService) Search(ctx context.Context, userID uuid.UUID, query eventDto.SearchEventsQuery) ([]eventDto.EventResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	ids, err := s.index.Search(query.Q, limit)
	if errors.Is(err, searchService.ErrSearchUnavailable) {
		events, err := s.repo.SearchTitle(ctx, query.Q, limit)
		if err != nil {
			return nil, err
		}
		return s.decorate(ctx, userID, events)
	}
	if err != nil {
		return nil, err
	}

	uuids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if parsed, err := uuid.Parse(id); err == nil {
			uuids = append(uuids, parsed)
		}
	}
	events, err := s.repo.FindActiveByIDs(ctx, uuids)
	if err != nil {
		return nil, err
	}

	// Keep the search engine's ranking.
	byID := make(map[uuid.UUID]entity.Event, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}
	ordered := make([]entity.Event, 0, len(events))
	for _, id := range uuids {
		if ev, ok := byID[id]; ok {
			ordered = append(ordered, ev)
		}
	}
	return s.decorate(ctx, userID, ordered)
}

func (s *eventService) Detail(ctx context.Context, userID, eventID uuid.UUID, page commonDto.PageQuery) (*eventDto.EventDetailResponse, error) {
	ev, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !ev.IsActive {
		return nil, fmt.Errorf("event not found: %w", apperror.ErrNotFound)
	}

	items, err := s.decorate(ctx, userID, []entity.Event{*ev})
	if err != nil {
		return nil, err
	}
	board, err := s.repo.Standings(ctx, ev, userID, page)
	if err != nil {
		return nil, err
	}

	return &eventDto.EventDetailResponse{
		EventResponse: items[0],
		Leaderboard:   *board,
	}, nil
}

func (s *eventService) Register(ctx context.Context, userID, eventID uuid.UUID) (*eventDto.RegisterResponse, error) {
	now := s.now()
	registered, err := s.repo.Register(ctx, eventID, userID, func(ev *entity.Event, already bool, count int64) error {
		return CheckRegistration(ev, already, count, now)
	})
	if err != nil {
		return nil, err
	}
	return &eventDto.RegisterResponse{Registered: registered}, nil
}

func (s *eventService) Unregister(ctx context.Context, userID, eventID uuid.UUID) (*eventDto.UnregisterResponse, error) {
	removed, err := s.repo.Unregister(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	return &eventDto.UnregisterResponse{Unregistered: removed}, nil
}

func (s *eventService) Create(ctx context.Context, adminID uuid.UUID, req eventDto.CreateEventRequest) (*eventDto.EventResponse, error) {
	ev := &entity.Event{
		Title:                sanitize.Text(req.Title),
		Description:          sanitize.OptionalText(req.Description),
		EventType:            req.EventType,
		DistanceCategory:     req.DistanceCategory,
		DistanceKM:           req.DistanceKM,
		StartsAt:             req.StartsAt.UTC(),
		EndsAt:               req.EndsAt.UTC(),
		RegistrationOpensAt:  utcPtr(req.RegistrationOpensAt),
		RegistrationClosesAt: utcPtr(req.RegistrationClosesAt),
		MaxParticipants:      req.MaxParticipants,
		SponsorName:          sanitize.OptionalText(req.SponsorName),
		SponsorLogoURL:       req.SponsorLogoURL,
		BannerImageURL:       req.BannerImageURL,
		PrimaryColor:         req.PrimaryColor,
		AccentColor:          req.AccentColor,
		IsActive:             true,
		IsFeatured:           req.IsFeatured,
		CreatedBy:            &adminID,
	}
	if err := validateEvent(ev); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, ev); err != nil {
		return nil, err
	}
	s.reindex(ev)

	resp := toResponse(*ev, 0, nil)
	return &resp, nil
}

func (s *eventService) Update(ctx context.Context, eventID uuid.UUID, req eventDto.UpdateEventRequest) (*eventDto.EventResponse, error) {
	ev, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		ev.Title = sanitize.Text(*req.Title)
	}
	if req.Description != nil {
		ev.Description = sanitize.OptionalText(req.Description)
	}
	if req.EventType != nil {
		ev.EventType = *req.EventType
	}
	if req.DistanceCategory != nil {
		ev.DistanceCategory = req.DistanceCategory
	}
	if req.DistanceKM != nil {
		ev.DistanceKM = req.DistanceKM
	}
	if req.StartsAt != nil {
		ev.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		ev.EndsAt = req.EndsAt.UTC()
	}
	if req.RegistrationOpensAt != nil {
		ev.RegistrationOpensAt = utcPtr(req.RegistrationOpensAt)
	}
	if req.RegistrationClosesAt != nil {
		ev.RegistrationClosesAt = utcPtr(req.RegistrationClosesAt)
	}
	if req.MaxParticipants != nil {
		ev.MaxParticipants = req.MaxParticipants
	}
	if req.SponsorName != nil {
		ev.SponsorName = sanitize.OptionalText(req.SponsorName)
	}
	if req.SponsorLogoURL != nil {
		ev.SponsorLogoURL = req.SponsorLogoURL
	}
	if req.BannerImageURL != nil {
		ev.BannerImageURL = req.BannerImageURL
	}
	if req.PrimaryColor != nil {
		ev.PrimaryColor = req.PrimaryColor
	}
	if req.AccentColor != nil {
		ev.AccentColor = req.AccentColor
	}
	if req.IsActive != nil {
		ev.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		ev.IsFeatured = *req.IsFeatured
	}

	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, ev); err != nil {
		return nil, err
	}
	s.reindex(ev)

	counts, err := s.repo.RegistrationCounts(ctx, []uuid.UUID{ev.ID})
	if err != nil {
		return nil, err
	}
	resp := toResponse(*ev, counts[ev.ID], nil)
	return &resp, nil
}

func (s *eventService) Deactivate(ctx context.Context, eventID uuid.UUID) error {
	inactive := false
	_, err := s.Update(ctx, eventID, eventDto.UpdateEventRequest{IsActive: &inactive})
	return err
}

func (s *eventService) Delete(ctx context.Context, eventID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, eventID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("event not found: %w", apperror.ErrNotFound)
	}

	if err := s.index.DeleteEvent(eventID.String()); err != nil {
		log.Printf("⚠️ Failed to remove event %s from search: %v", eventID, err)
	}
	return nil
}

func (s *eventService) ListAll(ctx context.Context, query eventDto.ListEventsQuery) ([]eventDto.EventResponse, error) {
	page := query.PageQuery.Normalize()
	status := query.Status
	if status == "" {
		status = eventRepo.StatusAll
	}

	events, err := s.repo.List(ctx, status, s.now(), true, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, uuid.Nil, events)
}

func (s *eventService) ListRegistrations(ctx context.Context, eventID uuid.UUID, page commonDto.PageQuery) (*eventDto.RegistrationListResponse, error) {
	if _, err := s.findEvent(ctx, eventID); err != nil {
		return nil, err
	}
	page = page.Normalize()

	rows, total, err := s.repo.ListRegistrations(ctx, eventID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}

	data := make([]eventDto.RegistrationResponse, 0, len(rows))
	for _, row := range rows {
		data = append(data, eventDto.RegistrationResponse{
			UserID:          row.UserID.String(),
			Email:           row.Email,
			DisplayName:     entity.PublicName(row.DisplayName, row.Name),
			Status:          row.Status,
			BestTimeSeconds: row.BestTimeSeconds,
			TotalDistanceKM: commonDto.Round1(row.TotalDistanceKM),
			RegisteredAt:    row.RegisteredAt,
		})
	}

	return &eventDto.RegistrationListResponse{
		Data: data,
		Meta: commonDto.PaginationMeta{Limit: page.Limit, Offset: page.Offset, TotalItems: total},
	}, nil
}

func (s *eventService) findEvent(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	ev, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("event not found: %w", apperror.ErrNotFound)
	}
	return ev, err
}

// decorate adds counts and, for a non-nil user, their registration.
func (s *eventService) decorate(ctx context.Context, userID uuid.UUID, events []entity.Event) ([]eventDto.EventResponse, error) {
	ids := make([]uuid.UUID, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}

	counts, err := s.repo.RegistrationCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	mine := map[uuid.UUID]entity.EventRegistration{}
	if userID != uuid.Nil {
		if mine, err = s.repo.Registrations(ctx, userID, ids); err != nil {
			return nil, err
		}
	}

	out := make([]eventDto.EventResponse, 0, len(events))
	for _, ev := range events {
		var reg *entity.EventRegistration
		if r, ok := mine[ev.ID]; ok {
			reg = &r
		}
		out = append(out, toResponse(ev, counts[ev.ID], reg))
	}
	return out, nil
}

func (s *eventService) reindex(ev *entity.Event) {
	if err := s.index.IndexEvent(ev); err != nil {
		log.Printf("⚠️ Failed to index event %s: %v", ev.ID, err)
	}
}

func validateEvent(ev *entity.Event) error {
	if ev.Title == "" {
		return fmt.Errorf("title is required: %w", apperror.ErrBadRequest)
	}
	if !ev.EndsAt.After(ev.StartsAt) {
		return fmt.Errorf("ends_at must be after starts_at: %w", apperror.ErrBadRequest)
	}
	if ev.IsRace() && ev.DistanceKM == nil {
		return fmt.Errorf("race events need distance_km: %w", apperror.ErrBadRequest)
	}
	if ev.RegistrationOpensAt != nil && ev.RegistrationClosesAt != nil && ev.RegistrationClosesAt.Before(*ev.RegistrationOpensAt) {
		return fmt.Errorf("registration closes before it opens: %w", apperror.ErrBadRequest)
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func toResponse(ev entity.Event, participants int64, reg *entity.EventRegistration) eventDto.EventResponse {
	resp := eventDto.EventResponse{
		ID:                   ev.ID.String(),
		Title:                ev.Title,
		Description:          ev.Description,
		EventType:            ev.EventType,
		DistanceCategory:     ev.DistanceCategory,
		DistanceKM:           ev.DistanceKM,
		StartsAt:             ev.StartsAt,
		EndsAt:               ev.EndsAt,
		RegistrationOpensAt:  ev.RegistrationOpensAt,
		RegistrationClosesAt: ev.RegistrationClosesAt,
		MaxParticipants:      ev.MaxParticipants,
		SponsorName:          ev.SponsorName,
		SponsorLogoURL:       ev.SponsorLogoURL,
		BannerImageURL:       ev.BannerImageURL,
		PrimaryColor:         ev.PrimaryColor,
		AccentColor:          ev.AccentColor,
		IsActive:             ev.IsActive,
		IsFeatured:           ev.IsFeatured,
		ParticipantCount:     participants,
	}
	if reg != nil {
		total := commonDto.Round1(reg.TotalDistanceKM)
		resp.IsRegistered = true
		resp.YourBestTimeSeconds = reg.BestTimeSeconds
		resp.YourTotalDistanceKM = &total
	}
	return resp
}
