package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"paceline.app/community/internal/config"
	"paceline.app/community/internal/entity"
	"paceline.app/community/internal/testutil"
)

func useDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "cli-secret")

	prev := connect
	connect = func(*config.Config) (*gorm.DB, error) { return db, nil }
	t.Cleanup(func() { connect = prev })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedCommand(t *testing.T) {
	db := testutil.NewDB(t)
	useDB(t, db)

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "catalog seeded")

	var n int64
	require.NoError(t, db.Model(&entity.DistanceCategory{}).Count(&n).Error)
	assert.Equal(t, int64(5), n)

	_, err = execute(t, "seed")
	require.NoError(t, err, "seeding twice is an upsert")
	require.NoError(t, db.Model(&entity.DistanceCategory{}).Count(&n).Error)
	assert.Equal(t, int64(5), n)
}

func TestGenerateChallengesCommand(t *testing.T) {
	db := testutil.NewSeededDB(t)
	useDB(t, db)

	out, err := execute(t, "generate-challenges", "--at", "2026-10-16")
	require.NoError(t, err)
	assert.Contains(t, out, "challenges created")

	var n int64
	require.NoError(t, db.Model(&entity.Challenge{}).Count(&n).Error)
	assert.Equal(t, int64(5), n)

	_, err = execute(t, "generate-challenges", "--at", "16/10/2026")
	assert.Error(t, err)
}

func TestReconcileCommand(t *testing.T) {
	db := testutil.NewSeededDB(t)
	useDB(t, db)

	_, err := execute(t, "reconcile", "--lookback", "-1h")
	assert.Error(t, err)

	out, err := execute(t, "reconcile", "--lookback", "48h")
	require.NoError(t, err)
	assert.Contains(t, out, "checked 0 athletes")
}

func TestTokenCommand(t *testing.T) {
	useDB(t, nil)

	_, err := execute(t, "token")
	assert.Error(t, err, "--user is required")

	_, err = execute(t, "token", "--user", "not-a-uuid")
	assert.Error(t, err)

	userID := uuid.New()
	out, err := execute(t, "token", "--user", userID.String(), "--ttl", "10m")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
}
