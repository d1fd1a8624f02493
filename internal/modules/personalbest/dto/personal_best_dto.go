package dto

import "time"

type PersonalBestResponse struct {
	DistanceCategory string    `json:"distance_category"`
	TimeSeconds      int       `json:"time_seconds"`
	RunID            string    `json:"run_id"`
	AchievedAt       time.Time `json:"achieved_at"`
}
