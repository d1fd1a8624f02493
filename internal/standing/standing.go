// Package standing ranks the participants of one challenge or event.
//
// Challenge participations and event registrations share a scoring shape:
// race boards order by best_time_seconds (lower wins, unscored rows are
// left out) and distance boards order by total_distance_km (higher wins,
// zero rows are left out). Ties break on user id so pages are stable.
package standing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	commonDto "paceline.app/community/pkg/dto"
)

// Board selects the participation rows of one parent competition.
type Board struct {
	Table        string
	ParentColumn string
	ParentID     uuid.UUID
	Race         bool
}

type row struct {
	UserID          uuid.UUID
	DisplayName     *string
	Name            *string
	ProfilePhotoURL *string
	BestTimeSeconds *int
	TotalDistanceKM float64
}

func (b Board) ranked(db *gorm.DB) *gorm.DB {
	q := db.Table(b.Table+" AS p").Where("p."+b.ParentColumn+" = ?", b.ParentID)
	if b.Race {
		return q.Where("p.best_time_seconds IS NOT NULL")
	}
	return q.Where("p.total_distance_km > 0")
}

func (b Board) value(r row) float64 {
	if b.Race {
		if r.BestTimeSeconds == nil {
			return 0
		}
		return float64(*r.BestTimeSeconds)
	}
	return commonDto.Round1(r.TotalDistanceKM)
}

// Load returns one page of the board plus the caller's own rank, which is
// computed over every ranked row regardless of the page.
func Load(ctx context.Context, db *gorm.DB, b Board, userID uuid.UUID, page commonDto.PageQuery) (*commonDto.LeaderboardResponse, error) {
	db = db.WithContext(ctx)
	page = page.Normalize()

	q := b.ranked(db).
		Select("p.user_id, users.display_name, users.name, users.profile_photo_url, p.best_time_seconds, p.total_distance_km").
		Joins("JOIN users ON users.id = p.user_id")
	if b.Race {
		q = q.Order("p.best_time_seconds ASC")
	} else {
		q = q.Order("p.total_distance_km DESC")
	}

	var rows []row
	if err := q.Order("p.user_id ASC").Limit(page.Limit).Offset(page.Offset).Scan(&rows).Error; err != nil {
		return nil, err
	}

	resp := &commonDto.LeaderboardResponse{Entries: make([]commonDto.LeaderboardEntry, 0, len(rows))}
	for i, r := range rows {
		resp.Entries = append(resp.Entries, commonDto.LeaderboardEntry{
			Rank:        page.Offset + i + 1,
			UserID:      r.UserID.String(),
			DisplayName: entity.PublicName(r.DisplayName, r.Name),
			Photo:       r.ProfilePhotoURL,
			Value:       b.value(r),
		})
	}

	if err := b.ranked(db).Count(&resp.TotalParticipants).Error; err != nil {
		return nil, err
	}

	var own row
	res := b.ranked(db).
		Select("p.best_time_seconds, p.total_distance_km").
		Where("p.user_id = ?", userID).
		Limit(1).
		Scan(&own)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return resp, nil
	}

	ahead := b.ranked(db)
	if b.Race {
		ahead = ahead.Where("p.best_time_seconds < ?", *own.BestTimeSeconds)
	} else {
		ahead = ahead.Where("p.total_distance_km > ?", own.TotalDistanceKM)
	}
	var better int64
	if err := ahead.Count(&better).Error; err != nil {
		return nil, err
	}

	rank := int(better) + 1
	value := b.value(own)
	resp.YourRank = &rank
	resp.YourValue = &value
	return resp, nil
}
