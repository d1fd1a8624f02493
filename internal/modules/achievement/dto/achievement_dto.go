package dto

import "time"

// AchievementSummary is what clients show when something unlocks.
type AchievementSummary struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Tier        string `json:"tier"`
}

type DefinitionResponse struct {
	AchievementSummary
	Threshold        float64 `json:"threshold"`
	DistanceCategory *string `json:"distance_category,omitempty"`
	SortOrder        int     `json:"sort_order"`
}

type UserAchievementResponse struct {
	AchievementSummary
	UnlockedAt time.Time `json:"unlocked_at"`
	RunID      *string   `json:"run_id,omitempty"`
	Notified   bool      `json:"notified"`
}

type MarkNotifiedRequest struct {
	AchievementIDs []string `json:"achievement_ids" binding:"required,min=1,max=100,dive,required,max=50"`
}

type MarkNotifiedResponse struct {
	Marked int64 `json:"marked"`
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	UsersChecked int `json:"users_checked"`
	Unlocked     int `json:"unlocked"`
}
