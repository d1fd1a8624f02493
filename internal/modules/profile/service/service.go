package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	profileDto "paceline.app/community/internal/modules/profile/dto"
	userRepo "paceline.app/community/internal/modules/user/repository"
	"paceline.app/community/pkg/apperror"
	"paceline.app/community/pkg/sanitize"
	"paceline.app/community/pkg/storage"
)

const (
	photoFolder   = "profiles"
	maxPhotoBytes = 5 << 20
)

type ProfileService interface {
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	UpdateCommunity(ctx context.Context, userID uuid.UUID, req profileDto.UpdateCommunityRequest) (*profileDto.ProfileResponse, error)
	UploadPhoto(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo   userRepo.UserRepository
	photos storage.PhotoStorage
	now    func() time.Time
}

func NewProfileService(repo userRepo.UserRepository, photos storage.PhotoStorage) ProfileService {
	return &profileService{
		repo:   repo,
		photos: photos,
		now:    time.Now,
	}
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponse(user), nil
}

func (s *profileService) UpdateCommunity(ctx context.Context, userID uuid.UUID, req profileDto.UpdateCommunityRequest) (*profileDto.ProfileResponse, error) {
	updates := map[string]interface{}{}

	if req.DisplayName != nil {
		updates["display_name"] = sanitize.OptionalText(req.DisplayName)
	}
	if req.Gender != nil {
		updates["gender"] = emptyToNil(*req.Gender)
	}
	if req.DateOfBirth != nil {
		dob := emptyToNil(*req.DateOfBirth)
		if dob != nil {
			born, err := time.Parse(entity.DateLayout, *dob)
			if err != nil || born.After(s.now().UTC()) {
				return nil, fmt.Errorf("invalid date of birth: %w", apperror.ErrInvalidInput)
			}
		}
		updates["date_of_birth"] = dob
	}
	if req.LeaderboardOptIn != nil {
		updates["leaderboard_opt_in"] = *req.LeaderboardOptIn
	}

	if err := s.repo.UpdateCommunitySettings(ctx, userID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	return s.GetCurrentProfile(ctx, userID)
}

func (s *profileService) UploadPhoto(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*profileDto.ProfileResponse, error) {
	if s.photos == nil {
		return nil, storage.ErrNotConfigured
	}
	if file.Size > maxPhotoBytes {
		return nil, fmt.Errorf("photo must be at most 5MB: %w", apperror.ErrBadRequest)
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("photo must be an image: %w", apperror.ErrBadRequest)
	}

	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open photo: %w", apperror.ErrBadRequest)
	}
	defer f.Close()

	// One photo per user: the upload overwrites the previous asset.
	url, err := s.photos.UploadPhoto(ctx, f, photoFolder, userID.String())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCommunitySettings(ctx, userID, map[string]interface{}{"profile_photo_url": url}); err != nil {
		log.Printf("⚠️ [profile] photo uploaded for %s but not saved: %v", userID, err)
		return nil, err
	}

	return s.GetCurrentProfile(ctx, userID)
}

func (s *profileService) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toResponse(user *entity.User) *profileDto.ProfileResponse {
	return &profileDto.ProfileResponse{
		ID:               user.ID.String(),
		Email:            user.Email,
		Name:             user.Name,
		DisplayName:      user.DisplayName,
		PublicName:       user.PublicName(),
		ProfilePhotoURL:  user.ProfilePhotoURL,
		DateOfBirth:      user.DateOfBirth,
		Gender:           user.Gender,
		LeaderboardOptIn: user.LeaderboardOptIn,
		CreatedAt:        user.CreatedAt,
	}
}
