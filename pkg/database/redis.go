package database

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"paceline.app/community/internal/config"
)

// ConnectRedis returns nil when no address is configured or the server does
// not answer; callers treat a nil client as "no cache, no live push".
func ConnectRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Println("⚠️ REDIS_ADDR not set, running without redis")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis at %s unavailable, running without it: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return nil
	}

	log.Printf("✅ Connected to redis at %s", cfg.RedisAddr)
	return client
}
