package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
)

type ShoeRepository interface {
	List(ctx context.Context, userID uuid.UUID, includeRetired bool) ([]entity.Shoe, error)
	FindOwned(ctx context.Context, userID, shoeID uuid.UUID) (*entity.Shoe, error)
	Create(ctx context.Context, shoe *entity.Shoe) error
	Update(ctx context.Context, shoe *entity.Shoe, changes map[string]interface{}) error
	Delete(ctx context.Context, userID, shoeID uuid.UUID) (bool, error)
	// AddMileage reports whether a shoe owned by userID was updated.
	AddMileage(ctx context.Context, userID, shoeID uuid.UUID, km float64) (bool, error)
}

type shoeRepository struct {
	db *gorm.DB
}

func NewShoeRepository(db *gorm.DB) ShoeRepository {
	return &shoeRepository{db: db}
}

func (r *shoeRepository) List(ctx context.Context, userID uuid.UUID, includeRetired bool) ([]entity.Shoe, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeRetired {
		query = query.Where("is_retired = ?", false)
	}

	var shoes []entity.Shoe
	if err := query.Order("created_at DESC").Order("id ASC").Find(&shoes).Error; err != nil {
		return nil, err
	}
	return shoes, nil
}

func (r *shoeRepository) FindOwned(ctx context.Context, userID, shoeID uuid.UUID) (*entity.Shoe, error) {
	var shoe entity.Shoe
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", shoeID, userID).Take(&shoe).Error; err != nil {
		return nil, err
	}
	return &shoe, nil
}

// Create clears the owner's other defaults in the same transaction when the
// new shoe is the default.
func (r *shoeRepository) Create(ctx context.Context, shoe *entity.Shoe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if shoe.IsDefault {
			if err := clearDefaults(tx, shoe.UserID); err != nil {
				return err
			}
		}
		return tx.Create(shoe).Error
	})
}

func (r *shoeRepository) Update(ctx context.Context, shoe *entity.Shoe, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if def, ok := changes["is_default"].(bool); ok && def {
			if err := clearDefaults(tx, shoe.UserID); err != nil {
				return err
			}
		}
		return tx.Model(shoe).Updates(changes).Error
	})
}

func (r *shoeRepository) Delete(ctx context.Context, userID, shoeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", shoeID, userID).Delete(&entity.Shoe{})
	return res.RowsAffected > 0, res.Error
}

func (r *shoeRepository) AddMileage(ctx context.Context, userID, shoeID uuid.UUID, km float64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Shoe{}).
		Where("id = ? AND user_id = ?", shoeID, userID).
		Update("total_distance_km", gorm.Expr("total_distance_km + ?", km))
	return res.RowsAffected > 0, res.Error
}

func clearDefaults(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Model(&entity.Shoe{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}
