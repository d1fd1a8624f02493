package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"paceline.app/community/internal/entity"
	"paceline.app/community/internal/standing"
	commonDto "paceline.app/community/pkg/dto"
)

const (
	StatusActive   = "active"
	StatusUpcoming = "upcoming"
	StatusPast     = "past"
)

// Match is one of the user's participations whose challenge window
// contains a run. TargetKM comes from the challenge's distance category.
type Match struct {
	ParticipationID uuid.UUID
	ChallengeID     uuid.UUID
	ChallengeType   string
	TargetKM        *int
}

type ChallengeRepository interface {
	CreateIfAbsent(ctx context.Context, challenge *entity.Challenge) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Challenge, error)
	List(ctx context.Context, status string, now time.Time, limit, offset int) ([]entity.Challenge, error)
	ParticipantCounts(ctx context.Context, challengeIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	Participations(ctx context.Context, userID uuid.UUID, challengeIDs []uuid.UUID) (map[uuid.UUID]entity.ChallengeParticipation, error)
	Join(ctx context.Context, challengeID, userID uuid.UUID) (bool, error)

	Matching(ctx context.Context, userID uuid.UUID, at time.Time) ([]Match, error)
	ImproveBestTime(ctx context.Context, participationID uuid.UUID, seconds int, runID uuid.UUID) (bool, error)
	AddDistance(ctx context.Context, participationID uuid.UUID, km float64) error

	Standings(ctx context.Context, challenge *entity.Challenge, userID uuid.UUID, page commonDto.PageQuery) (*commonDto.LeaderboardResponse, error)
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

// CreateIfAbsent keys on series_id and reports whether a row was written.
func (r *challengeRepository) CreateIfAbsent(ctx context.Context, challenge *entity.Challenge) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "series_id"}}, DoNothing: true}).
		Create(challenge)
	return result.RowsAffected > 0, result.Error
}

func (r *challengeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Challenge, error) {
	var challenge entity.Challenge
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) List(ctx context.Context, status string, now time.Time, limit, offset int) ([]entity.Challenge, error) {
	query := r.db.WithContext(ctx).Model(&entity.Challenge{})

	switch status {
	case StatusUpcoming:
		query = query.Where("starts_at > ?", now)
	case StatusPast:
		query = query.Where("ends_at < ?", now)
	default:
		query = query.Where("starts_at <= ? AND ends_at >= ?", now, now)
	}

	var challenges []entity.Challenge
	err := query.Order("starts_at DESC").Order("series_id ASC").Limit(limit).Offset(offset).Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *challengeRepository) ParticipantCounts(ctx context.Context, challengeIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(challengeIDs))
	if len(challengeIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		ChallengeID uuid.UUID
		Count       int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.ChallengeParticipation{}).
		Select("challenge_id, COUNT(*) AS count").
		Where("challenge_id IN ?", challengeIDs).
		Group("challenge_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.ChallengeID] = row.Count
	}
	return out, nil
}

func (r *challengeRepository) Participations(ctx context.Context, userID uuid.UUID, challengeIDs []uuid.UUID) (map[uuid.UUID]entity.ChallengeParticipation, error) {
	out := make(map[uuid.UUID]entity.ChallengeParticipation, len(challengeIDs))
	if len(challengeIDs) == 0 {
		return out, nil
	}

	var parts []entity.ChallengeParticipation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND challenge_id IN ?", userID, challengeIDs).
		Find(&parts).Error
	if err != nil {
		return nil, err
	}

	for _, p := range parts {
		out[p.ChallengeID] = p
	}
	return out, nil
}

// Join is insert-if-absent on (challenge, user).
func (r *challengeRepository) Join(ctx context.Context, challengeID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "challenge_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&entity.ChallengeParticipation{ChallengeID: challengeID, UserID: userID})
	return result.RowsAffected > 0, result.Error
}

func (r *challengeRepository) Matching(ctx context.Context, userID uuid.UUID, at time.Time) ([]Match, error) {
	var matches []Match
	err := r.db.WithContext(ctx).
		Table("challenge_participations AS cp").
		Select("cp.id AS participation_id, c.id AS challenge_id, c.challenge_type, dc.target_km").
		Joins("JOIN challenges AS c ON c.id = cp.challenge_id").
		Joins("LEFT JOIN distance_categories AS dc ON dc.code = c.distance_category").
		Where("cp.user_id = ? AND c.starts_at <= ? AND c.ends_at >= ?", userID, at, at).
		Scan(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// ImproveBestTime only writes when the time beats the stored best.
func (r *challengeRepository) ImproveBestTime(ctx context.Context, participationID uuid.UUID, seconds int, runID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.ChallengeParticipation{}).
		Where("id = ? AND (best_time_seconds IS NULL OR best_time_seconds > ?)", participationID, seconds).
		Updates(map[string]interface{}{
			"best_time_seconds": seconds,
			"best_run_id":       runID,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *challengeRepository) AddDistance(ctx context.Context, participationID uuid.UUID, km float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.ChallengeParticipation{}).
		Where("id = ?", participationID).
		Update("total_distance_km", gorm.Expr("total_distance_km + ?", km)).Error
}

func (r *challengeRepository) Standings(ctx context.Context, challenge *entity.Challenge, userID uuid.UUID, page commonDto.PageQuery) (*commonDto.LeaderboardResponse, error) {
	return standing.Load(ctx, r.db, standing.Board{
		Table:        "challenge_participations",
		ParentColumn: "challenge_id",
		ParentID:     challenge.ID,
		Race:         challenge.IsRace(),
	}, userID, page)
}
