package dto

import (
	"encoding/json"
	"time"

	commonDto "paceline.app/community/pkg/dto"
)

type FeedQuery struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	commonDto.PageQuery
}

type ActivityResponse struct {
	ID           uint            `json:"id"`
	UserID       string          `json:"user_id"`
	ActivityType string          `json:"activity_type"`
	ReferenceID  *string         `json:"reference_id,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type FeedResponse struct {
	Data []ActivityResponse       `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
