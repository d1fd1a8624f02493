package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SYNC_MAX_BATCH", "25")
	t.Setenv("RECONCILE_LOOKBACK", "6h")
	t.Setenv("LEADERBOARD_CACHE_TTL", "1m")
	t.Setenv("REDIS_DB", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev-secret", cfg.JWTSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 25, cfg.SyncMaxBatch)
	assert.Equal(t, 6*time.Hour, cfg.ReconcileLookback)
	assert.Equal(t, time.Minute, cfg.LeaderboardCacheTTL)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("secret required outside development", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("bad integer", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("SYNC_MAX_BATCH", "lots")
		_, err := Load()
		assert.ErrorContains(t, err, "SYNC_MAX_BATCH")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("SYNC_MAX_BATCH", "")
		t.Setenv("RECONCILE_LOOKBACK", "a day")
		_, err := Load()
		assert.ErrorContains(t, err, "RECONCILE_LOOKBACK")
	})
}
