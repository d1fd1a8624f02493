package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"paceline.app/community/internal/entity"
	activityDto "paceline.app/community/internal/modules/activity/dto"
	activityRepo "paceline.app/community/internal/modules/activity/repository"
	commonDto "paceline.app/community/pkg/dto"
)

// ActivityService records social feed entries. Entries are never updated.
type ActivityService interface {
	Log(ctx context.Context, userID uuid.UUID, activityType string, referenceID string, payload interface{}) error
	Feed(ctx context.Context, userID uuid.UUID, page commonDto.PageQuery) (*activityDto.FeedResponse, error)
}

type activityService struct {
	repo activityRepo.ActivityRepository
}

func NewActivityService(repo activityRepo.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Log(ctx context.Context, userID uuid.UUID, activityType string, referenceID string, payload interface{}) error {
	entry := &entity.ActivityLog{
		UserID:       userID,
		ActivityType: activityType,
	}
	if referenceID != "" {
		entry.ReferenceID = &referenceID
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode activity payload: %w", err)
		}
		entry.Payload = datatypes.JSON(raw)
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("log %s activity: %w", activityType, err)
	}
	return nil
}

func (s *activityService) Feed(ctx context.Context, userID uuid.UUID, page commonDto.PageQuery) (*activityDto.FeedResponse, error) {
	page = page.Normalize()

	entries, total, err := s.repo.ListByUser(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}

	data := make([]activityDto.ActivityResponse, 0, len(entries))
	for _, e := range entries {
		data = append(data, activityDto.ActivityResponse{
			ID:           e.ID,
			UserID:       e.UserID.String(),
			ActivityType: e.ActivityType,
			ReferenceID:  e.ReferenceID,
			Payload:      json.RawMessage(e.Payload),
			CreatedAt:    e.CreatedAt,
		})
	}

	return &activityDto.FeedResponse{
		Data: data,
		Meta: commonDto.PaginationMeta{Limit: page.Limit, Offset: page.Offset, TotalItems: total},
	}, nil
}
