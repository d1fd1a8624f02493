package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"paceline.app/community/internal/entity"
	"paceline.app/community/internal/standing"
	commonDto "paceline.app/community/pkg/dto"
)

const (
	StatusActive   = "active"
	StatusUpcoming = "upcoming"
	StatusPast     = "past"
	StatusAll      = "all"
)

// Admission decides whether a registration may be written. It runs inside
// the registration transaction with the event row locked; ev is nil when the
// event does not exist.
type Admission func(ev *entity.Event, alreadyRegistered bool, registered int64) error

// Match is one of the user's registrations whose event window contains a run.
type Match struct {
	RegistrationID uuid.UUID
	EventID        uuid.UUID
	EventType      string
	DistanceKM     *float64
}

// RegistrationRow is the admin view of one registration.
type RegistrationRow struct {
	UserID          uuid.UUID
	Email           string
	DisplayName     *string
	Name            *string
	Status          string
	BestTimeSeconds *int
	TotalDistanceKM float64
	RegisteredAt    time.Time
}

type EventRepository interface {
	Create(ctx context.Context, ev *entity.Event) error
	Save(ctx context.Context, ev *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Event, error)
	SearchTitle(ctx context.Context, query string, limit int) ([]entity.Event, error)
	List(ctx context.Context, status string, now time.Time, includeInactive bool, limit, offset int) ([]entity.Event, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	RegistrationCounts(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	Registrations(ctx context.Context, userID uuid.UUID, eventIDs []uuid.UUID) (map[uuid.UUID]entity.EventRegistration, error)
	Register(ctx context.Context, eventID, userID uuid.UUID, admit Admission) (bool, error)
	Unregister(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	ListRegistrations(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]RegistrationRow, int64, error)

	Matching(ctx context.Context, userID uuid.UUID, at time.Time) ([]Match, error)
	ImproveBestTime(ctx context.Context, registrationID uuid.UUID, seconds int, runID uuid.UUID) (bool, error)
	AddDistance(ctx context.Context, registrationID uuid.UUID, km float64) error
	Standings(ctx context.Context, ev *entity.Event, userID uuid.UUID, page commonDto.PageQuery) (*commonDto.LeaderboardResponse, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, ev *entity.Event) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *eventRepository) Save(ctx context.Context, ev *entity.Event) error {
	return r.db.WithContext(ctx).Save(ev).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	var ev entity.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *eventRepository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var events []entity.Event
	if err := r.db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) SearchTitle(ctx context.Context, query string, limit int) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND LOWER(title) LIKE ?", true, "%"+strings.ToLower(query)+"%").
		Order("starts_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) List(ctx context.Context, status string, now time.Time, includeInactive bool, limit, offset int) ([]entity.Event, error) {
	query := r.db.WithContext(ctx).Model(&entity.Event{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	switch status {
	case StatusActive:
		query = query.Where("starts_at <= ? AND ends_at >= ?", now, now)
	case StatusUpcoming:
		query = query.Where("starts_at > ?", now)
	case StatusPast:
		query = query.Where("ends_at < ?", now)
	}

	order := "starts_at DESC"
	if includeInactive {
		order = "created_at DESC"
	}

	var events []entity.Event
	if err := query.Order(order).Order("id ASC").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Delete removes the event and all of its registrations.
func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&entity.EventRegistration{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Event{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (r *eventRepository) RegistrationCounts(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		EventID uuid.UUID
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.EventRegistration{}).
		Select("event_id, COUNT(*) AS count").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.EventID] = row.Count
	}
	return out, nil
}

func (r *eventRepository) Registrations(ctx context.Context, userID uuid.UUID, eventIDs []uuid.UUID) (map[uuid.UUID]entity.EventRegistration, error) {
	out := make(map[uuid.UUID]entity.EventRegistration, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	var regs []entity.EventRegistration
	if err := r.db.WithContext(ctx).Where("user_id = ? AND event_id IN ?", userID, eventIDs).Find(&regs).Error; err != nil {
		return nil, err
	}
	for _, reg := range regs {
		out[reg.EventID] = reg
	}
	return out, nil
}

// Register locks the event row so the capacity check and the insert see the
// same registration count.
func (r *eventRepository) Register(ctx context.Context, eventID, userID uuid.UUID, admit Admission) (bool, error) {
	var created bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev entity.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", eventID).Take(&ev).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return admit(nil, false, 0)
		}
		if err != nil {
			return err
		}

		var mine int64
		if err := tx.Model(&entity.EventRegistration{}).
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Count(&mine).Error; err != nil {
			return err
		}

		var total int64
		if err := tx.Model(&entity.EventRegistration{}).
			Where("event_id = ?", eventID).
			Count(&total).Error; err != nil {
			return err
		}

		if err := admit(&ev, mine > 0, total); err != nil {
			return err
		}
		if mine > 0 {
			return nil
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&entity.EventRegistration{EventID: eventID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected > 0
		return nil
	})

	return created, err
}

func (r *eventRepository) Unregister(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&entity.EventRegistration{})
	return res.RowsAffected > 0, res.Error
}

func (r *eventRepository) ListRegistrations(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]RegistrationRow, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&entity.EventRegistration{}).Where("event_id = ?", eventID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []RegistrationRow
	err := db.Table("event_registrations AS er").
		Select("er.user_id, users.email, users.display_name, users.name, er.status, er.best_time_seconds, er.total_distance_km, er.registered_at").
		Joins("JOIN users ON users.id = er.user_id").
		Where("er.event_id = ?", eventID).
		Order("er.registered_at ASC").
		Order("er.user_id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Matching ignores the event's active flag: a deactivated event keeps
// scoring for the runners already registered.
func (r *eventRepository) Matching(ctx context.Context, userID uuid.UUID, at time.Time) ([]Match, error) {
	var matches []Match
	err := r.db.WithContext(ctx).
		Table("event_registrations AS er").
		Select("er.id AS registration_id, e.id AS event_id, e.event_type, e.distance_km").
		Joins("JOIN events AS e ON e.id = er.event_id").
		Where("er.user_id = ? AND er.status = ?", userID, entity.RegistrationRegistered).
		Where("e.starts_at <= ? AND e.ends_at >= ?", at, at).
		Scan(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *eventRepository) ImproveBestTime(ctx context.Context, registrationID uuid.UUID, seconds int, runID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.EventRegistration{}).
		Where("id = ? AND (best_time_seconds IS NULL OR best_time_seconds > ?)", registrationID, seconds).
		Updates(map[string]interface{}{
			"best_time_seconds": seconds,
			"best_run_id":       runID,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *eventRepository) AddDistance(ctx context.Context, registrationID uuid.UUID, km float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.EventRegistration{}).
		Where("id = ?", registrationID).
		Update("total_distance_km", gorm.Expr("total_distance_km + ?", km)).Error
}

func (r *eventRepository) Standings(ctx context.Context, ev *entity.Event, userID uuid.UUID, page commonDto.PageQuery) (*commonDto.LeaderboardResponse, error) {
	return standing.Load(ctx, r.db, standing.Board{
		Table:        "event_registrations",
		ParentColumn: "event_id",
		ParentID:     ev.ID,
		Race:         ev.IsRace(),
	}, userID, page)
}
