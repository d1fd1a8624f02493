package entity

import (
	"time"

	"github.com/google/uuid"
)

// DistanceCategory is seeded reference data ("5K" → 5 km).
type DistanceCategory struct {
	Code      string `gorm:"size:10;primaryKey" json:"code" yaml:"code"`
	Label     string `gorm:"size:50;not null" json:"label" yaml:"label"`
	TargetKM  int    `gorm:"column:target_km;not null" json:"target_km" yaml:"target_km"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order" yaml:"sort_order"`
}

type PersonalBest struct {
	UserID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	DistanceCategory string    `gorm:"size:10;primaryKey;index" json:"distance_category"`
	TimeSeconds      int       `gorm:"not null" json:"time_seconds"`
	RunID            uuid.UUID `gorm:"type:uuid;not null" json:"run_id"`
	// ImprovementCount is 0 for a freshly inserted record and grows by one on
	// each strictly faster time.
	ImprovementCount int       `gorm:"not null;default:0" json:"improvement_count"`
	AchievedAt       time.Time `gorm:"not null" json:"achieved_at"`
}
