package dto

import "time"

type ListShoesQuery struct {
	IncludeRetired bool `form:"include_retired"`
}

type CreateShoeRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	IsDefault bool   `json:"is_default"`
}

type UpdateShoeRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	IsDefault *bool   `json:"is_default"`
	IsRetired *bool   `json:"is_retired"`
}

type ShoeResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	PhotoURL        *string   `json:"photo_url"`
	IsDefault       bool      `json:"is_default"`
	TotalDistanceKM float64   `json:"total_distance_km"`
	IsRetired       bool      `json:"is_retired"`
	CreatedAt       time.Time `json:"created_at"`
}
