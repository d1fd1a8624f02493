package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shoe struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	PhotoURL        *string   `gorm:"type:text" json:"photo_url,omitempty"`
	IsDefault       bool      `gorm:"not null;default:false" json:"is_default"`
	TotalDistanceKM float64   `gorm:"column:total_distance_km;not null;default:0" json:"total_distance_km"`
	IsRetired       bool      `gorm:"not null;default:false" json:"is_retired"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Shoe) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
