package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"studiofinder_backend/internal/auth"
	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/pkg/apperrors"
	"studiofinder_backend/pkg/contextkeys"
)

// SessionCookie is the cookie the web client stores the access token in.
const SessionCookie = "session"

// AuthMiddleware accepts a bearer token or the session cookie. Role and
// status come from the users table, not the token, so suspending or
// demoting a user takes effect on the next request. Must run after
// DBMiddleware.
func AuthMiddleware(tokens *auth.TokenManager, users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				tokenStr = cookie
			}
		}
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		db, ok := c.Get(string(contextkeys.DBContextKey))
		gormDB, _ := db.(*gorm.DB)
		if !ok || gormDB == nil {
			apperrors.HandleError(c, apperrors.InternalError(errors.New("auth: database not found in context")))
			return
		}
		user, err := users.FindAccess(gormDB, claims.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				apperrors.HandleError(c, apperrors.ErrInvalidToken)
				return
			}
			apperrors.HandleError(c, apperrors.InternalError(err))
			return
		}
		if user.Status == models.UserStatusSuspended {
			apperrors.HandleError(c, apperrors.ErrUserSuspended)
			return
		}

		// Сохраняем актуальные роль и статус в контекст
		c.Set(contextkeys.UserIDKey, user.ID)
		c.Set(contextkeys.RoleKey, user.Role)
		c.Set(contextkeys.StatusKey, user.Status)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// RequireRoles lets the request through when the caller has any of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role, ok := c.Get(contextkeys.RoleKey)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
			return
		}
		if r, _ := role.(models.UserRole); !roleSet[r] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// CronAuthMiddleware guards scheduler endpoints with a shared secret sent
// as a bearer token. An empty secret disables the endpoints.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if secret == "" || token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			logger.CtxWarn(c.Request.Context(), "cron request rejected", "ip", c.ClientIP())
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid cron secret"))
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user ID or "".
func GetUserID(c *gin.Context) string {
	id, _ := c.Get(contextkeys.UserIDKey)
	s, _ := id.(string)
	return s
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
