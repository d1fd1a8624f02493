package dto

import (
	"encoding/json"
	"time"

	achievementDto "paceline.app/community/internal/modules/achievement/dto"
	commonDto "paceline.app/community/pkg/dto"
)

// RunPayload mirrors the client's run log. KMSplits accepts the split table
// either as a JSON array or as a string holding that array.
type RunPayload struct {
	ID              string          `json:"id" binding:"required,uuid"`
	CompletedAt     time.Time       `json:"completed_at" binding:"required"`
	DistanceKM      float64         `json:"distance_km" binding:"gte=0,lte=1000"`
	DurationSeconds float64         `json:"duration_seconds" binding:"gte=0"`
	AvgPaceSecPerKM float64         `json:"avg_pace_sec_per_km" binding:"gte=0"`
	KMSplits        json.RawMessage `json:"km_splits"`

	FeedbackRating *int    `json:"feedback_rating" binding:"omitempty,min=1,max=5"`
	Notes          *string `json:"notes" binding:"omitempty,max=2000"`

	PlannedWorkoutTitle *string  `json:"planned_workout_title" binding:"omitempty,max=255"`
	PlannedWorkoutType  *string  `json:"planned_workout_type" binding:"omitempty,max=50"`
	PlannedDistanceKM   *float64 `json:"planned_distance_km" binding:"omitempty,gte=0"`
	CompletionScore     *int     `json:"completion_score" binding:"omitempty,min=0,max=100"`
	PlanName            *string  `json:"plan_name" binding:"omitempty,max=255"`
	WeekNumber          *int     `json:"week_number" binding:"omitempty,min=0"`

	DataSource     string  `json:"data_source" binding:"omitempty,oneof=bluetooth_ftms manual"`
	TreadmillBrand *string `json:"treadmill_brand" binding:"omitempty,max=100"`
	ShoeID         *string `json:"shoe_id" binding:"omitempty,uuid"`
}

type SyncRequest struct {
	Runs []RunPayload `json:"runs" binding:"dive"`
}

type SyncResponse struct {
	SyncedCount         int                                 `json:"synced_count"`
	AlreadyExistedCount int                                 `json:"already_existed_count"`
	FailedCount         int                                 `json:"failed_count"`
	NewlyUnlocked       []achievementDto.AchievementSummary `json:"newly_unlocked"`
}

type ListRunsQuery struct {
	Since *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	commonDto.PageQuery
}

type RunResponse struct {
	ID                    string          `json:"id"`
	CompletedAt           time.Time       `json:"completed_at"`
	DistanceKM            float64         `json:"distance_km"`
	DurationSeconds       float64         `json:"duration_seconds"`
	AvgPaceSecPerKM       float64         `json:"avg_pace_sec_per_km"`
	KMSplits              json.RawMessage `json:"km_splits,omitempty"`
	FeedbackRating        *int            `json:"feedback_rating,omitempty"`
	Notes                 *string         `json:"notes,omitempty"`
	PlannedWorkoutTitle   *string         `json:"planned_workout_title,omitempty"`
	PlannedWorkoutType    *string         `json:"planned_workout_type,omitempty"`
	PlannedDistanceKM     *float64        `json:"planned_distance_km,omitempty"`
	CompletionScore       *int            `json:"completion_score,omitempty"`
	PlanName              *string         `json:"plan_name,omitempty"`
	WeekNumber            *int            `json:"week_number,omitempty"`
	DataSource            string          `json:"data_source"`
	TreadmillBrand        *string         `json:"treadmill_brand,omitempty"`
	IsLeaderboardEligible bool            `json:"is_leaderboard_eligible"`
	ShoeID                *string         `json:"shoe_id,omitempty"`
	SyncedAt              time.Time       `json:"synced_at"`
}
