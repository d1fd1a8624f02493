package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChannel(t *testing.T) {
	assert.Equal(t, "user_notifications:abc", Channel("abc"))
}

func TestPublish_WithoutRedis(t *testing.T) {
	svc := NewNotificationService(nil)
	assert.NotPanics(t, func() {
		svc.Publish(context.Background(), uuid.New(), TypePersonalBest, map[string]int{"seconds": 1500})
	})
}
