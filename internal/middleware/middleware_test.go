package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studiofinder_backend/internal/auth"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(t *testing.T, tokens *auth.TokenManager) (*gin.Engine, *gorm.DB) {
	db := testutil.OpenDB(t)
	r := gin.New()
	r.Use(RequestIDMiddleware(), DBMiddleware(db))
	authMW := AuthMiddleware(tokens, repositories.NewUserRepository())
	r.GET("/me", authMW, func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})
	r.GET("/admin", authMW, RequireRoles(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.POST("/cron", CronAuthMiddleware("s3cret"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, db
}

func tokenFor(t *testing.T, tokens *auth.TokenManager, user *models.User) string {
	t.Helper()
	token, err := tokens.Generate(user)
	require.NoError(t, err)
	return token
}

func call(r *gin.Engine, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r, db := protectedRouter(t, tokens)
	user := testutil.CreateUser(t, db, "owner@example.com", models.UserRoleStudioOwner, models.UserStatusActive)
	token := tokenFor(t, tokens, user)

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) }, http.StatusOK},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
			if tc.status == http.StatusOK {
				assert.Equal(t, user.ID, w.Body.String())
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r, db := protectedRouter(t, tokens)

	admin := testutil.CreateUser(t, db, "admin@example.com", models.UserRoleAdmin, models.UserStatusActive)
	owner := testutil.CreateUser(t, db, "owner@example.com", models.UserRoleStudioOwner, models.UserStatusActive)

	assert.Equal(t, http.StatusNoContent, call(r, "/admin", tokenFor(t, tokens, admin)))
	assert.Equal(t, http.StatusForbidden, call(r, "/admin", tokenFor(t, tokens, owner)))
}

func TestAuthMiddlewareUsesCurrentRoleAndStatus(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r, db := protectedRouter(t, tokens)

	admin := testutil.CreateUser(t, db, "admin@example.com", models.UserRoleAdmin, models.UserStatusActive)
	token := tokenFor(t, tokens, admin)
	require.Equal(t, http.StatusNoContent, call(r, "/admin", token))

	// token still says ADMIN
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", admin.ID).Update("role", models.UserRoleStudioOwner).Error)
	assert.Equal(t, http.StatusForbidden, call(r, "/admin", token))
	assert.Equal(t, http.StatusOK, call(r, "/me", token))

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", admin.ID).Update("status", models.UserStatusSuspended).Error)
	assert.Equal(t, http.StatusForbidden, call(r, "/me", token))

	require.NoError(t, db.Delete(&models.User{}, "id = ?", admin.ID).Error)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/me", token))
}

func TestAuthMiddlewareWithoutDB(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens, repositories.NewUserRepository()), func(c *gin.Context) { c.Status(http.StatusOK) })

	token := tokenFor(t, tokens, &models.User{BaseModel: models.BaseModel{ID: "u"}, Role: models.UserRoleAdmin, Status: models.UserStatusActive})
	assert.Equal(t, http.StatusInternalServerError, call(r, "/me", token))
}

func TestCronAuthMiddleware(t *testing.T) {
	r, _ := protectedRouter(t, auth.NewTokenManager("secret", time.Hour))

	for header, status := range map[string]int{
		"":              http.StatusUnauthorized,
		"Bearer wrong":  http.StatusUnauthorized,
		"Bearer s3cret": http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodPost, "/cron", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, status, w.Code, "header %q", header)
	}

	open := gin.New()
	open.POST("/cron", CronAuthMiddleware(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	req := httptest.NewRequest(http.MethodPost, "/cron", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	open.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.False(t, limiter.Allow("1.1.1.1"))
	assert.True(t, limiter.Allow("2.2.2.2"))

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("1.1.1.1"))

	now = now.Add(time.Hour)
	limiter.Allow("3.3.3.3")
	assert.Len(t, limiter.visitors, 1)
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 1)
	r := gin.New()
	r.POST("/join", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/join", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
