package dto

import "time"

// UpdateCommunityRequest edits the fields that shape how the athlete
// appears on leaderboards. Nil leaves a field unchanged; an empty string
// clears it.
type UpdateCommunityRequest struct {
	DisplayName      *string `json:"display_name" binding:"omitempty,max=50"`
	Gender           *string `json:"gender" binding:"omitempty,oneof=male female non_binary prefer_not_to_say"`
	DateOfBirth      *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	LeaderboardOptIn *bool   `json:"leaderboard_opt_in"`
}

type ProfileResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             *string   `json:"name,omitempty"`
	DisplayName      *string   `json:"display_name,omitempty"`
	PublicName       string    `json:"public_name"`
	ProfilePhotoURL  *string   `json:"profile_photo_url,omitempty"`
	DateOfBirth      *string   `json:"date_of_birth,omitempty"`
	Gender           *string   `json:"gender,omitempty"`
	LeaderboardOptIn bool      `json:"leaderboard_opt_in"`
	CreatedAt        time.Time `json:"created_at"`
}
