package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	challengeDto "paceline.app/community/internal/modules/challenge/dto"
	challengeRepo "paceline.app/community/internal/modules/challenge/repository"
	"paceline.app/community/pkg/apperror"
	commonDto "paceline.app/community/pkg/dto"
	"paceline.app/community/pkg/splits"
)

type ChallengeService interface {
	// Generate creates the scheduled challenges around now that do not
	// exist yet and returns how many were created.
	Generate(ctx context.Context, now time.Time) (int, error)
	// MatchRun credits an eligible run to every joined challenge whose
	// window contains it and returns how many standings changed.
	MatchRun(ctx context.Context, run *entity.Run) (int, error)

	List(ctx context.Context, userID uuid.UUID, query challengeDto.ListChallengesQuery) ([]challengeDto.ChallengeResponse, error)
	Detail(ctx context.Context, userID, challengeID uuid.UUID, page commonDto.PageQuery) (*challengeDto.ChallengeDetailResponse, error)
	Join(ctx context.Context, userID, challengeID uuid.UUID) (*challengeDto.JoinResponse, error)
}

type challengeService struct {
	repo challengeRepo.ChallengeRepository
	now  func() time.Time
}

func NewChallengeService(repo challengeRepo.ChallengeRepository) ChallengeService {
	return &challengeService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *challengeService) Generate(ctx context.Context, now time.Time) (int, error) {
	planned := append(WeeklyRaces(now), MonthlyDistance(now))

	created := 0
	for i := range planned {
		ok, err := s.repo.CreateIfAbsent(ctx, &planned[i])
		if err != nil {
			return created, fmt.Errorf("create challenge %s: %w", planned[i].SeriesID, err)
		}
		if ok {
			created++
			log.Printf("📅 Created challenge %s (%s)", planned[i].SeriesID, planned[i].Title)
		}
	}
	return created, nil
}

func (s *challengeService) MatchRun(ctx context.Context, run *entity.Run) (int, error) {
	if !run.IsLeaderboardEligible {
		return 0, nil
	}

	matches, err := s.repo.Matching(ctx, run.UserID, run.CompletedAt)
	if err != nil {
		return 0, fmt.Errorf("find matching challenges: %w", err)
	}
	if len(matches) == 0 {
		return 0, nil
	}

	// Malformed splits only rule out race scoring.
	table, tableErr := run.SplitTable()

	var (
		updated int
		errs    []error
	)
	for _, m := range matches {
		switch m.ChallengeType {
		case entity.ChallengeWeeklyRace:
			if m.TargetKM == nil || tableErr != nil {
				continue
			}
			seconds, ok := splits.QualifyingTime(run.DistanceKM, float64(*m.TargetKM), table)
			if !ok {
				continue
			}
			improved, err := s.repo.ImproveBestTime(ctx, m.ParticipationID, seconds, run.ID)
			if err != nil {
				errs = append(errs, fmt.Errorf("challenge %s: %w", m.ChallengeID, err))
				continue
			}
			if improved {
				updated++
			}

		case entity.ChallengeMonthlyDistance:
			if err := s.repo.AddDistance(ctx, m.ParticipationID, run.DistanceKM); err != nil {
				errs = append(errs, fmt.Errorf("challenge %s: %w", m.ChallengeID, err))
				continue
			}
			updated++
		}
	}

	return updated, errors.Join(errs...)
}

func (s *challengeService) List(ctx context.Context, userID uuid.UUID, query challengeDto.ListChallengesQuery) ([]challengeDto.ChallengeResponse, error) {
	page := query.PageQuery.Normalize()
	status := query.Status
	if status == "" {
		status = challengeRepo.StatusActive
	}

	challenges, err := s.repo.List(ctx, status, s.now(), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(challenges))
	for _, c := range challenges {
		ids = append(ids, c.ID)
	}
	counts, err := s.repo.ParticipantCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	mine, err := s.repo.Participations(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]challengeDto.ChallengeResponse, 0, len(challenges))
	for _, c := range challenges {
		var part *entity.ChallengeParticipation
		if p, ok := mine[c.ID]; ok {
			part = &p
		}
		out = append(out, toResponse(c, counts[c.ID], part))
	}
	return out, nil
}

func (s *challengeService) Detail(ctx context.Context, userID, challengeID uuid.UUID, page commonDto.PageQuery) (*challengeDto.ChallengeDetailResponse, error) {
	challenge, err := s.findChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.ParticipantCounts(ctx, []uuid.UUID{challenge.ID})
	if err != nil {
		return nil, err
	}
	mine, err := s.repo.Participations(ctx, userID, []uuid.UUID{challenge.ID})
	if err != nil {
		return nil, err
	}
	var part *entity.ChallengeParticipation
	if p, ok := mine[challenge.ID]; ok {
		part = &p
	}

	board, err := s.repo.Standings(ctx, challenge, userID, page)
	if err != nil {
		return nil, err
	}

	return &challengeDto.ChallengeDetailResponse{
		ChallengeResponse: toResponse(*challenge, counts[challenge.ID], part),
		Leaderboard:       *board,
	}, nil
}

func (s *challengeService) Join(ctx context.Context, userID, challengeID uuid.UUID) (*challengeDto.JoinResponse, error) {
	if _, err := s.findChallenge(ctx, challengeID); err != nil {
		return nil, err
	}

	joined, err := s.repo.Join(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	return &challengeDto.JoinResponse{Joined: joined}, nil
}

func (s *challengeService) findChallenge(ctx context.Context, id uuid.UUID) (*entity.Challenge, error) {
	challenge, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("challenge not found: %w", apperror.ErrNotFound)
	}
	return challenge, err
}

func toResponse(c entity.Challenge, participants int64, part *entity.ChallengeParticipation) challengeDto.ChallengeResponse {
	resp := challengeDto.ChallengeResponse{
		ID:                 c.ID.String(),
		Title:              c.Title,
		Description:        c.Description,
		ChallengeType:      c.ChallengeType,
		DistanceCategory:   c.DistanceCategory,
		CumulativeTargetKM: c.CumulativeTargetKM,
		StartsAt:           c.StartsAt,
		EndsAt:             c.EndsAt,
		ParticipantCount:   participants,
	}
	if part != nil {
		total := commonDto.Round1(part.TotalDistanceKM)
		resp.IsJoined = true
		resp.YourBestTimeSeconds = part.BestTimeSeconds
		resp.YourTotalDistanceKM = &total
	}
	return resp
}
