package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChallengeWeeklyRace      = "weekly_race"
	ChallengeMonthlyDistance = "monthly_distance"
)

type Challenge struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string    `gorm:"size:255;not null" json:"title"`
	Description        *string   `gorm:"type:text" json:"description,omitempty"`
	ChallengeType      string    `gorm:"size:30;not null" json:"challenge_type"`
	DistanceCategory   *string   `gorm:"size:10" json:"distance_category,omitempty"`
	CumulativeTargetKM *float64  `gorm:"column:cumulative_target_km" json:"cumulative_target_km,omitempty"`
	StartsAt           time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt             time.Time `gorm:"not null;index" json:"ends_at"`
	SeriesID           string    `gorm:"size:100;not null;uniqueIndex" json:"series_id"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsRace reports whether standing is a best time rather than a distance sum.
func (c *Challenge) IsRace() bool {
	return c.ChallengeType == ChallengeWeeklyRace
}

type ChallengeParticipation struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_user,priority:1" json:"challenge_id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_user,priority:2;index" json:"user_id"`
	BestTimeSeconds *int       `json:"best_time_seconds,omitempty"`
	BestRunID       *uuid.UUID `gorm:"type:uuid" json:"best_run_id,omitempty"`
	TotalDistanceKM float64    `gorm:"column:total_distance_km;not null;default:0" json:"total_distance_km"`
	JoinedAt        time.Time  `gorm:"autoCreateTime" json:"joined_at"`
}

func (p *ChallengeParticipation) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
