package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	shoeDto "paceline.app/community/internal/modules/shoe/dto"
	shoeRepo "paceline.app/community/internal/modules/shoe/repository"
	"paceline.app/community/pkg/apperror"
	"paceline.app/community/pkg/sanitize"
	"paceline.app/community/pkg/storage"
)

const (
	photoFolder   = "shoes"
	maxPhotoBytes = 5 << 20
)

type ShoeService interface {
	List(ctx context.Context, userID uuid.UUID, includeRetired bool) ([]shoeDto.ShoeResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req shoeDto.CreateShoeRequest) (*shoeDto.ShoeResponse, error)
	Update(ctx context.Context, userID, shoeID uuid.UUID, req shoeDto.UpdateShoeRequest) (*shoeDto.ShoeResponse, error)
	Delete(ctx context.Context, userID, shoeID uuid.UUID) error
	UploadPhoto(ctx context.Context, userID, shoeID uuid.UUID, file *multipart.FileHeader) (*shoeDto.ShoeResponse, error)

	// AddMileage credits a run's distance to the runner's own shoe. It
	// reports false when the shoe does not exist or belongs to someone else.
	AddMileage(ctx context.Context, userID, shoeID uuid.UUID, km float64) (bool, error)
}

type shoeService struct {
	repo   shoeRepo.ShoeRepository
	photos storage.PhotoStorage
}

// NewShoeService accepts a nil photo storage; uploads then fail.
func NewShoeService(repo shoeRepo.ShoeRepository, photos storage.PhotoStorage) ShoeService {
	return &shoeService{repo: repo, photos: photos}
}

func (s *shoeService) List(ctx context.Context, userID uuid.UUID, includeRetired bool) ([]shoeDto.ShoeResponse, error) {
	shoes, err := s.repo.List(ctx, userID, includeRetired)
	if err != nil {
		return nil, err
	}

	out := make([]shoeDto.ShoeResponse, 0, len(shoes))
	for _, shoe := range shoes {
		out = append(out, toResponse(shoe))
	}
	return out, nil
}

func (s *shoeService) Create(ctx context.Context, userID uuid.UUID, req shoeDto.CreateShoeRequest) (*shoeDto.ShoeResponse, error) {
	name := sanitize.Text(req.Name)
	if name == "" {
		return nil, fmt.Errorf("shoe name is required: %w", apperror.ErrInvalidInput)
	}

	shoe := &entity.Shoe{
		UserID:    userID,
		Name:      name,
		IsDefault: req.IsDefault,
	}
	if err := s.repo.Create(ctx, shoe); err != nil {
		return nil, err
	}

	resp := toResponse(*shoe)
	return &resp, nil
}

func (s *shoeService) Update(ctx context.Context, userID, shoeID uuid.UUID, req shoeDto.UpdateShoeRequest) (*shoeDto.ShoeResponse, error) {
	shoe, err := s.findOwned(ctx, userID, shoeID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("shoe name is required: %w", apperror.ErrInvalidInput)
		}
		changes["name"] = name
	}
	if req.IsDefault != nil {
		changes["is_default"] = *req.IsDefault
	}
	if req.IsRetired != nil {
		changes["is_retired"] = *req.IsRetired
	}

	if err := s.repo.Update(ctx, shoe, changes); err != nil {
		return nil, err
	}

	updated, err := s.findOwned(ctx, userID, shoeID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(*updated)
	return &resp, nil
}

func (s *shoeService) Delete(ctx context.Context, userID, shoeID uuid.UUID) error {
	shoe, err := s.findOwned(ctx, userID, shoeID)
	if err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, userID, shoeID); err != nil {
		return err
	}

	if shoe.PhotoURL != nil {
		s.dropPhoto(ctx, *shoe.PhotoURL)
	}
	return nil
}

func (s *shoeService) UploadPhoto(ctx context.Context, userID, shoeID uuid.UUID, file *multipart.FileHeader) (*shoeDto.ShoeResponse, error) {
	if s.photos == nil {
		return nil, storage.ErrNotConfigured
	}
	if file.Size > maxPhotoBytes {
		return nil, fmt.Errorf("photo must be at most 5MB: %w", apperror.ErrBadRequest)
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("photo must be an image: %w", apperror.ErrBadRequest)
	}

	shoe, err := s.findOwned(ctx, userID, shoeID)
	if err != nil {
		return nil, err
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// One public id per shoe; the upload overwrites the previous photo.
	url, err := s.photos.UploadPhoto(ctx, f, photoFolder, shoe.ID.String())
	if err != nil {
		return nil, err
	}

	if shoe.PhotoURL != nil && storage.PublicIDFromURL(*shoe.PhotoURL) != storage.PublicIDFromURL(url) {
		s.dropPhoto(ctx, *shoe.PhotoURL)
	}

	if err := s.repo.Update(ctx, shoe, map[string]interface{}{"photo_url": url}); err != nil {
		return nil, err
	}
	shoe.PhotoURL = &url

	resp := toResponse(*shoe)
	return &resp, nil
}

func (s *shoeService) AddMileage(ctx context.Context, userID, shoeID uuid.UUID, km float64) (bool, error) {
	if km <= 0 {
		return false, nil
	}
	return s.repo.AddMileage(ctx, userID, shoeID, km)
}

func (s *shoeService) findOwned(ctx context.Context, userID, shoeID uuid.UUID) (*entity.Shoe, error) {
	shoe, err := s.repo.FindOwned(ctx, userID, shoeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("shoe not found: %w", apperror.ErrNotFound)
	}
	return shoe, err
}

func (s *shoeService) dropPhoto(ctx context.Context, url string) {
	if s.photos == nil {
		return
	}
	if err := s.photos.DeletePhoto(ctx, url); err != nil {
		log.Printf("⚠️ Failed to delete shoe photo %s: %v", url, err)
	}
}

func toResponse(shoe entity.Shoe) shoeDto.ShoeResponse {
	return shoeDto.ShoeResponse{
		ID:              shoe.ID.String(),
		Name:            shoe.Name,
		PhotoURL:        shoe.PhotoURL,
		IsDefault:       shoe.IsDefault,
		TotalDistanceKM: shoe.TotalDistanceKM,
		IsRetired:       shoe.IsRetired,
		CreatedAt:       shoe.CreatedAt,
	}
}
