package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is owned by the external auth service; this service reads it and
// lets the athlete edit their community settings.
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name             *string   `gorm:"size:255" json:"name,omitempty"`
	DisplayName      *string   `gorm:"size:100" json:"display_name,omitempty"`
	ProfilePhotoURL  *string   `gorm:"type:text" json:"profile_photo_url,omitempty"`
	DateOfBirth      *string   `gorm:"size:10" json:"date_of_birth,omitempty"` // YYYY-MM-DD
	Gender           *string   `gorm:"size:20;index" json:"gender,omitempty"`
	LeaderboardOptIn bool      `gorm:"not null;default:false;index" json:"leaderboard_opt_in"`
	IsAdmin          bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PublicName is the name shown on leaderboards.
func (u *User) PublicName() string {
	return PublicName(u.DisplayName, u.Name)
}

func PublicName(displayName, name *string) string {
	if displayName != nil && *displayName != "" {
		return *displayName
	}
	if name != nil && *name != "" {
		return *name
	}
	return "Runner"
}
