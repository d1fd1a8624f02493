package dto

import "math"

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// PageQuery is bound from ?limit=&offset= on every paginated endpoint.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Normalize fills the default limit.
func (p PageQuery) Normalize() PageQuery {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type PaginationMeta struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalItems int64 `json:"total_items"`
}

// LeaderboardEntry is shared by the global leaderboards and the
// challenge/event detail leaderboards.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Photo       *string `json:"photo,omitempty"`
	Value       float64 `json:"value"`
}

// LeaderboardResponse carries one page of entries plus the caller's own
// standing over the whole ranked population.
type LeaderboardResponse struct {
	Entries           []LeaderboardEntry `json:"entries"`
	YourRank          *int               `json:"your_rank"`
	YourValue         *float64           `json:"your_value"`
	TotalParticipants int64              `json:"total_participants"`
}

// Round1 rounds a distance to one decimal for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
