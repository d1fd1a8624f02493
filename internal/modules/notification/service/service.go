package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TypeAchievementUnlocked = "achievement_unlocked"
	TypePersonalBest        = "personal_best"
)

// Message is the JSON pushed to connected clients.
type Message struct {
	Type      string      `json:"type"`
	UserID    string      `json:"user_id"`
	Data      interface{} `json:"data"`
	CreatedAt time.Time   `json:"created_at"`
}

// NotificationService fans out realtime messages over redis pub/sub. The
// durable record lives elsewhere (user_achievements.notified), so a missing
// redis only loses the live push.
type NotificationService interface {
	Publish(ctx context.Context, userID uuid.UUID, msgType string, data interface{})
}

type notificationService struct {
	redisClient *redis.Client
}

func NewNotificationService(redisClient *redis.Client) NotificationService {
	return &notificationService{redisClient: redisClient}
}

func Channel(userID string) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

func (s *notificationService) Publish(ctx context.Context, userID uuid.UUID, msgType string, data interface{}) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(Message{
		Type:      msgType,
		UserID:    userID.String(),
		Data:      data,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("⚠️ Failed to encode %s notification: %v", msgType, err)
		return
	}

	if err := s.redisClient.Publish(ctx, Channel(userID.String()), payload).Err(); err != nil {
		log.Printf("⚠️ Failed to publish %s notification for user %s: %v", msgType, userID, err)
	}
}
