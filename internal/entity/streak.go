package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserStreak struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CurrentStreak   int       `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak   int       `gorm:"not null;default:0" json:"longest_streak"`
	LastRunDate     string    `gorm:"size:10" json:"last_run_date"`
	StreakStartDate string    `gorm:"size:10" json:"streak_start_date"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
