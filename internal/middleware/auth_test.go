package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"paceline.app/community/internal/entity"
	"paceline.app/community/internal/middleware"
	userRepo "paceline.app/community/internal/modules/user/repository"
	"paceline.app/community/internal/testutil"
)

const secret = "test-secret"

func router(t *testing.T) (*gin.Engine, *entity.User, *entity.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	athlete := testutil.CreateUser(t, db, nil)
	admin := testutil.CreateUser(t, db, func(u *entity.User) { u.IsAdmin = true })

	auth := middleware.NewAuthMiddleware(userRepo.NewUserRepository(db), secret)
	r := gin.New()
	api := r.Group("/api", auth.RequireAuth())
	api.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("user_id")) })
	api.GET("/admin", auth.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r, athlete, admin
}

func get(t *testing.T, r http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, key string, userID uuid.UUID, ttl time.Duration) string {
	t.Helper()
	tok, err := middleware.IssueToken(key, userID, ttl)
	require.NoError(t, err)
	return tok
}

func TestRequireAuth(t *testing.T) {
	r, athlete, _ := router(t)

	w := get(t, r, "/api/me", token(t, secret, athlete.ID, time.Hour))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, athlete.ID.String(), w.Body.String())

	w = get(t, r, "/api/me?token="+token(t, secret, athlete.ID, time.Hour), "")
	assert.Equal(t, http.StatusOK, w.Code, "query token for websocket clients")

	assert.Equal(t, http.StatusUnauthorized, get(t, r, "/api/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, r, "/api/me", token(t, "other", athlete.ID, time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, r, "/api/me", token(t, secret, athlete.ID, -time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, r, "/api/me", "garbage").Code)
}

func TestRequireAdmin(t *testing.T) {
	r, athlete, admin := router(t)

	assert.Equal(t, http.StatusForbidden, get(t, r, "/api/admin", token(t, secret, athlete.ID, time.Hour)).Code)
	assert.Equal(t, http.StatusNoContent, get(t, r, "/api/admin", token(t, secret, admin.ID, time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, r, "/api/admin", token(t, secret, uuid.New(), time.Hour)).Code)
}
