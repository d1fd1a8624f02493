package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"paceline.app/community/pkg/splits"
)

const (
	DataSourceBluetoothFTMS = "bluetooth_ftms"
	DataSourceManual        = "manual"
)

// Run is immutable once stored. ID is assigned by the client and is the
// dedup key for sync.
type Run struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_runs_user_completed,priority:1" json:"user_id"`
	CompletedAt     time.Time      `gorm:"not null;index:idx_runs_user_completed,priority:2;index:idx_runs_completed" json:"completed_at"`
	DistanceKM      float64        `gorm:"not null" json:"distance_km"`
	DurationSeconds float64        `gorm:"not null" json:"duration_seconds"`
	AvgPaceSecPerKM float64        `gorm:"column:avg_pace_sec_per_km;not null" json:"avg_pace_sec_per_km"`
	KMSplits        datatypes.JSON `gorm:"column:km_splits" json:"km_splits,omitempty"`

	FeedbackRating *int    `json:"feedback_rating,omitempty"`
	Notes          *string `gorm:"type:text" json:"notes,omitempty"`

	PlannedWorkoutTitle *string  `gorm:"size:255" json:"planned_workout_title,omitempty"`
	PlannedWorkoutType  *string  `gorm:"size:50" json:"planned_workout_type,omitempty"`
	PlannedDistanceKM   *float64 `json:"planned_distance_km,omitempty"`
	CompletionScore     *int     `json:"completion_score,omitempty"`
	PlanName            *string  `gorm:"size:255" json:"plan_name,omitempty"`
	WeekNumber          *int     `json:"week_number,omitempty"`

	DataSource            string     `gorm:"size:20;not null;default:manual" json:"data_source"`
	TreadmillBrand        *string    `gorm:"size:100" json:"treadmill_brand,omitempty"`
	IsLeaderboardEligible bool       `gorm:"not null;default:false" json:"is_leaderboard_eligible"`
	ShoeID                *uuid.UUID `gorm:"type:uuid;index" json:"shoe_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// IsEligible reports whether the run came from a trusted measurement source.
func IsEligible(dataSource string) bool {
	return dataSource == DataSourceBluetoothFTMS
}

// SplitTable decodes the stored per-km table.
func (r *Run) SplitTable() ([]splits.Split, error) {
	return splits.Decode(r.KMSplits)
}

// RunDate is the calendar date of completion, normalized to UTC.
func (r *Run) RunDate() string {
	return r.CompletedAt.UTC().Format(DateLayout)
}

const DateLayout = "2006-01-02"
