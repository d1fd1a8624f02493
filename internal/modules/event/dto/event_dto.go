package dto

import (
	"time"

	commonDto "paceline.app/community/pkg/dto"
)

type ListEventsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active upcoming past all"`
	commonDto.PageQuery
}

type SearchEventsQuery struct {
	Q     string `form:"q" binding:"required,max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type CreateEventRequest struct {
	Title                string     `json:"title" binding:"required,max=255"`
	Description          *string    `json:"description"`
	EventType            string     `json:"event_type" binding:"required,oneof=race virtual_race group_run"`
	DistanceCategory     *string    `json:"distance_category" binding:"omitempty,max=10"`
	DistanceKM           *float64   `json:"distance_km" binding:"omitempty,gt=0"`
	StartsAt             time.Time  `json:"starts_at" binding:"required"`
	EndsAt               time.Time  `json:"ends_at" binding:"required,gtfield=StartsAt"`
	RegistrationOpensAt  *time.Time `json:"registration_opens_at"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at"`
	MaxParticipants      *int       `json:"max_participants" binding:"omitempty,min=1"`
	SponsorName          *string    `json:"sponsor_name" binding:"omitempty,max=255"`
	SponsorLogoURL       *string    `json:"sponsor_logo_url" binding:"omitempty,url"`
	BannerImageURL       *string    `json:"banner_image_url" binding:"omitempty,url"`
	PrimaryColor         *string    `json:"primary_color" binding:"omitempty,hexcolor,max=7"`
	AccentColor          *string    `json:"accent_color" binding:"omitempty,hexcolor,max=7"`
	IsFeatured           bool       `json:"is_featured"`
}

// UpdateEventRequest applies only the fields that are present.
type UpdateEventRequest struct {
	Title                *string    `json:"title" binding:"omitempty,max=255"`
	Description          *string    `json:"description"`
	EventType            *string    `json:"event_type" binding:"omitempty,oneof=race virtual_race group_run"`
	DistanceCategory     *string    `json:"distance_category" binding:"omitempty,max=10"`
	DistanceKM           *float64   `json:"distance_km" binding:"omitempty,gt=0"`
	StartsAt             *time.Time `json:"starts_at"`
	EndsAt               *time.Time `json:"ends_at"`
	RegistrationOpensAt  *time.Time `json:"registration_opens_at"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at"`
	MaxParticipants      *int       `json:"max_participants" binding:"omitempty,min=1"`
	SponsorName          *string    `json:"sponsor_name" binding:"omitempty,max=255"`
	SponsorLogoURL       *string    `json:"sponsor_logo_url" binding:"omitempty,url"`
	BannerImageURL       *string    `json:"banner_image_url" binding:"omitempty,url"`
	PrimaryColor         *string    `json:"primary_color" binding:"omitempty,hexcolor,max=7"`
	AccentColor          *string    `json:"accent_color" binding:"omitempty,hexcolor,max=7"`
	IsActive             *bool      `json:"is_active"`
	IsFeatured           *bool      `json:"is_featured"`
}

type EventResponse struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          *string    `json:"description"`
	EventType            string     `json:"event_type"`
	DistanceCategory     *string    `json:"distance_category"`
	DistanceKM           *float64   `json:"distance_km"`
	StartsAt             time.Time  `json:"starts_at"`
	EndsAt               time.Time  `json:"ends_at"`
	RegistrationOpensAt  *time.Time `json:"registration_opens_at"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at"`
	MaxParticipants      *int       `json:"max_participants"`
	SponsorName          *string    `json:"sponsor_name"`
	SponsorLogoURL       *string    `json:"sponsor_logo_url"`
	BannerImageURL       *string    `json:"banner_image_url"`
	PrimaryColor         *string    `json:"primary_color"`
	AccentColor          *string    `json:"accent_color"`
	IsActive             bool       `json:"is_active"`
	IsFeatured           bool       `json:"is_featured"`
	ParticipantCount     int64      `json:"participant_count"`
	IsRegistered         bool       `json:"is_registered"`
	YourBestTimeSeconds  *int       `json:"your_best_time_seconds"`
	YourTotalDistanceKM  *float64   `json:"your_total_distance_km"`
}

type EventDetailResponse struct {
	EventResponse
	Leaderboard commonDto.LeaderboardResponse `json:"leaderboard"`
}

type RegisterResponse struct {
	Registered bool `json:"registered"`
}

type UnregisterResponse struct {
	Unregistered bool `json:"unregistered"`
}

type RegistrationResponse struct {
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	Status          string    `json:"status"`
	BestTimeSeconds *int      `json:"best_time_seconds"`
	TotalDistanceKM float64   `json:"total_distance_km"`
	RegisteredAt    time.Time `json:"registered_at"`
}

type RegistrationListResponse struct {
	Data []RegistrationResponse   `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
