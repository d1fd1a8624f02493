package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActivityRun         = "run"
	ActivityAchievement = "achievement"
	ActivityPB          = "pb"
)

// ActivityLog is append-only. ID order is insertion order.
type ActivityLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_activity_user_id,priority:1" json:"user_id"`
	ActivityType string         `gorm:"size:30;not null" json:"activity_type"`
	ReferenceID  *string        `gorm:"size:64" json:"reference_id,omitempty"`
	Payload      datatypes.JSON `json:"payload,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}
