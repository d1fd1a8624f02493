package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventRace        = "race"
	EventVirtualRace = "virtual_race"
	EventGroupRun    = "group_run"

	RegistrationRegistered = "registered"
	RegistrationCompleted  = "completed"
	RegistrationDNS        = "dns"
)

type Event struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title                string     `gorm:"size:255;not null" json:"title"`
	Description          *string    `gorm:"type:text" json:"description,omitempty"`
	EventType            string     `gorm:"size:30;not null" json:"event_type"`
	DistanceCategory     *string    `gorm:"size:10" json:"distance_category,omitempty"`
	DistanceKM           *float64   `gorm:"column:distance_km" json:"distance_km,omitempty"`
	StartsAt             time.Time  `gorm:"not null;index" json:"starts_at"`
	EndsAt               time.Time  `gorm:"not null;index" json:"ends_at"`
	RegistrationOpensAt  *time.Time `json:"registration_opens_at,omitempty"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at,omitempty"`
	MaxParticipants      *int       `json:"max_participants,omitempty"`
	SponsorName          *string    `gorm:"size:255" json:"sponsor_name,omitempty"`
	SponsorLogoURL       *string    `gorm:"type:text" json:"sponsor_logo_url,omitempty"`
	BannerImageURL       *string    `gorm:"type:text" json:"banner_image_url,omitempty"`
	PrimaryColor         *string    `gorm:"size:7" json:"primary_color,omitempty"`
	AccentColor          *string    `gorm:"size:7" json:"accent_color,omitempty"`
	IsActive             bool       `gorm:"not null;default:true;index" json:"is_active"`
	IsFeatured           bool       `gorm:"not null;default:false" json:"is_featured"`
	CreatedBy            *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsRace reports whether standing is a best time rather than a distance sum.
func (e *Event) IsRace() bool {
	return e.EventType == EventRace || e.EventType == EventVirtualRace
}

type EventRegistration struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EventID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_event_user,priority:1" json:"event_id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_event_user,priority:2;index" json:"user_id"`
	Status          string     `gorm:"size:20;not null;default:registered" json:"status"`
	BestTimeSeconds *int       `json:"best_time_seconds,omitempty"`
	BestRunID       *uuid.UUID `gorm:"type:uuid" json:"best_run_id,omitempty"`
	TotalDistanceKM float64    `gorm:"column:total_distance_km;not null;default:0" json:"total_distance_km"`
	RegisteredAt    time.Time  `gorm:"autoCreateTime" json:"registered_at"`
}

func (r *EventRegistration) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
