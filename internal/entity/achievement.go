package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	AchievementDistance    = "distance"
	AchievementStreak      = "streak"
	AchievementPerformance = "performance"
	AchievementMilestone   = "milestone"
)

type AchievementDefinition struct {
	ID          string  `gorm:"size:50;primaryKey" json:"id" yaml:"id"`
	Category    string  `gorm:"size:20;not null;index" json:"category" yaml:"category"`
	Title       string  `gorm:"size:100;not null" json:"title" yaml:"title"`
	Description string  `gorm:"type:text;not null" json:"description" yaml:"description"`
	Icon        string  `gorm:"size:50;not null" json:"icon" yaml:"icon"`
	Threshold   float64 `gorm:"not null" json:"threshold" yaml:"threshold"`
	Tier        string  `gorm:"size:20;not null" json:"tier" yaml:"tier"`
	// DistanceCategory is set for performance achievements only.
	DistanceCategory *string `gorm:"size:10" json:"distance_category,omitempty" yaml:"distance_category"`
	SortOrder        int     `gorm:"not null;default:0" json:"sort_order" yaml:"sort_order"`
}

type UserAchievement struct {
	ID            uint                  `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	AchievementID string                `gorm:"size:50;not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	Definition    AchievementDefinition `gorm:"foreignKey:AchievementID;references:ID" json:"-"`
	UnlockedAt    time.Time             `gorm:"not null;index" json:"unlocked_at"`
	RunID         *uuid.UUID            `gorm:"type:uuid" json:"run_id,omitempty"`
	Notified      bool                  `gorm:"not null;default:false" json:"notified"`
}
