package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"paceline.app/community/internal/entity"
	"paceline.app/community/internal/metrics"
	leaderboardDto "paceline.app/community/internal/modules/leaderboard/dto"
	leaderboardRepo "paceline.app/community/internal/modules/leaderboard/repository"
	"paceline.app/community/pkg/apperror"
	commonDto "paceline.app/community/pkg/dto"
)

type LeaderboardService interface {
	YearlyDistance(ctx context.Context, userID uuid.UUID, query leaderboardDto.YearlyDistanceQuery) (*commonDto.LeaderboardResponse, error)
	BestTime(ctx context.Context, userID uuid.UUID, query leaderboardDto.BestTimeQuery) (*commonDto.LeaderboardResponse, error)
}

// cachedPage is the part of a response shared by every caller.
type cachedPage struct {
	Entries []commonDto.LeaderboardEntry `json:"entries"`
	Total   int64                        `json:"total"`
}

type leaderboardService struct {
	repo        leaderboardRepo.LeaderboardRepository
	redisClient *redis.Client
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewLeaderboardService caches pages in redis when a client is given and the
// TTL is positive. The caller's own rank is never cached.
func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, redisClient *redis.Client, cacheTTL time.Duration) LeaderboardService {
	return &leaderboardService{
		repo:        repo,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *leaderboardService) YearlyDistance(ctx context.Context, userID uuid.UUID, query leaderboardDto.YearlyDistanceQuery) (*commonDto.LeaderboardResponse, error) {
	timer := prometheus.NewTimer(metrics.LeaderboardQueryDuration.WithLabelValues(metrics.ModeYearlyDistance))
	defer timer.ObserveDuration()

	now := s.now()
	year := query.Year
	if year == 0 {
		year = now.Year()
	}
	filter, err := buildFilter(query.Gender, query.AgeGroup, now)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrInvalidInput)
	}
	page := query.PageQuery.Normalize()

	key := cacheKey(metrics.ModeYearlyDistance, fmt.Sprint(year), query.Demographics, now, page)
	shared, err := s.cached(ctx, metrics.ModeYearlyDistance, key, func() (cachedPage, error) {
		rows, total, err := s.repo.YearlyDistancePage(ctx, year, filter, page.Limit, page.Offset)
		if err != nil {
			return cachedPage{}, err
		}
		return cachedPage{Entries: toEntries(rows, page.Offset, commonDto.Round1), Total: total}, nil
	})
	if err != nil {
		return nil, err
	}

	resp := &commonDto.LeaderboardResponse{Entries: shared.Entries, TotalParticipants: shared.Total}

	own, err := s.repo.YearlyDistanceOf(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	if own > 0 {
		ahead, err := s.repo.YearlyDistanceAhead(ctx, year, filter, own)
		if err != nil {
			return nil, err
		}
		rank := int(ahead) + 1
		value := commonDto.Round1(own)
		resp.YourRank = &rank
		resp.YourValue = &value
	}
	return resp, nil
}

func (s *leaderboardService) BestTime(ctx context.Context, userID uuid.UUID, query leaderboardDto.BestTimeQuery) (*commonDto.LeaderboardResponse, error) {
	timer := prometheus.NewTimer(metrics.LeaderboardQueryDuration.WithLabelValues(metrics.ModeBestTime))
	defer timer.ObserveDuration()

	exists, err := s.repo.CategoryExists(ctx, query.Category)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("unknown distance category %q: %w", query.Category, apperror.ErrInvalidInput)
	}

	now := s.now()
	filter, err := buildFilter(query.Gender, query.AgeGroup, now)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrInvalidInput)
	}
	page := query.PageQuery.Normalize()

	key := cacheKey(metrics.ModeBestTime, query.Category, query.Demographics, now, page)
	shared, err := s.cached(ctx, metrics.ModeBestTime, key, func() (cachedPage, error) {
		rows, total, err := s.repo.BestTimePage(ctx, query.Category, filter, page.Limit, page.Offset)
		if err != nil {
			return cachedPage{}, err
		}
		return cachedPage{Entries: toEntries(rows, page.Offset, nil), Total: total}, nil
	})
	if err != nil {
		return nil, err
	}

	resp := &commonDto.LeaderboardResponse{Entries: shared.Entries, TotalParticipants: shared.Total}

	own, err := s.repo.BestTimeOf(ctx, userID, query.Category)
	if err != nil {
		return nil, err
	}
	if own != nil {
		ahead, err := s.repo.BestTimeAhead(ctx, query.Category, filter, *own)
		if err != nil {
			return nil, err
		}
		rank := int(ahead) + 1
		value := float64(*own)
		resp.YourRank = &rank
		resp.YourValue = &value
	}
	return resp, nil
}

// cached serves the shared page from redis, loading and storing it on a
// miss. Redis failures fall through to the database.
func (s *leaderboardService) cached(ctx context.Context, mode, key string, load func() (cachedPage, error)) (cachedPage, error) {
	if s.redisClient == nil || s.cacheTTL <= 0 {
		return load()
	}

	raw, err := s.redisClient.Get(ctx, key).Bytes()
	if err == nil {
		var page cachedPage
		if err := json.Unmarshal(raw, &page); err == nil {
			metrics.LeaderboardCacheTotal.WithLabelValues(mode, "hit").Inc()
			return page, nil
		}
	} else if err != redis.Nil {
		log.Printf("⚠️ Leaderboard cache read failed for %s: %v", key, err)
	}
	metrics.LeaderboardCacheTotal.WithLabelValues(mode, "miss").Inc()

	page, err := load()
	if err != nil {
		return cachedPage{}, err
	}

	if data, err := json.Marshal(page); err == nil {
		if err := s.redisClient.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
			log.Printf("⚠️ Leaderboard cache write failed for %s: %v", key, err)
		}
	}
	return page, nil
}

// cacheKey includes the day when an age group is set, since bucket
// membership moves with the reference date.
func cacheKey(mode, subject string, demo leaderboardDto.Demographics, now time.Time, page commonDto.PageQuery) string {
	day := "-"
	if demo.AgeGroup != "" {
		day = now.Format(entity.DateLayout)
	}
	return fmt.Sprintf("leaderboard:%s:%s:g=%s:a=%s:%s:%d:%d",
		mode, subject, demo.Gender, demo.AgeGroup, day, page.Limit, page.Offset)
}

func toEntries(rows []leaderboardRepo.Row, offset int, round func(float64) float64) []commonDto.LeaderboardEntry {
	entries := make([]commonDto.LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		value := r.Value
		if round != nil {
			value = round(value)
		}
		entries = append(entries, commonDto.LeaderboardEntry{
			Rank:        offset + i + 1,
			UserID:      r.UserID.String(),
			DisplayName: entity.PublicName(r.DisplayName, r.Name),
			Photo:       r.ProfilePhotoURL,
			Value:       value,
		})
	}
	return entries
}
