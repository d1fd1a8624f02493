package dto

import (
	"time"

	commonDto "paceline.app/community/pkg/dto"
)

type ListChallengesQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active upcoming past"`
	commonDto.PageQuery
}

type ChallengeResponse struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         *string   `json:"description,omitempty"`
	ChallengeType       string    `json:"challenge_type"`
	DistanceCategory    *string   `json:"distance_category"`
	CumulativeTargetKM  *float64  `json:"cumulative_target_km"`
	StartsAt            time.Time `json:"starts_at"`
	EndsAt              time.Time `json:"ends_at"`
	ParticipantCount    int64     `json:"participant_count"`
	IsJoined            bool      `json:"is_joined"`
	YourBestTimeSeconds *int      `json:"your_best_time_seconds"`
	YourTotalDistanceKM *float64  `json:"your_total_distance_km"`
}

type ChallengeDetailResponse struct {
	ChallengeResponse
	Leaderboard commonDto.LeaderboardResponse `json:"leaderboard"`
}

type JoinResponse struct {
	Joined bool `json:"joined"`
}
