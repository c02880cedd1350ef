package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studiofinder_backend/internal/auth"
	"studiofinder_backend/internal/models"
)

const DefaultPassword = "password123"

// OpenDB returns a migrated in-memory SQLite database private to the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// CreateUser inserts a verified user with DefaultPassword.
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.UserRole, status models.UserStatus) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(DefaultPassword)
	require.NoError(t, err)

	user := &models.User{
		Email:          email,
		PasswordHash:   hash,
		DisplayName:    strings.Split(email, "@")[0],
		Role:           role,
		Status:         status,
		MembershipTier: models.MembershipTierBasic,
		EmailVerified:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// StudioOption customises CreateStudio fixtures.
type StudioOption func(*models.StudioProfile)

func WithLocation(city string, lat, lng float64) StudioOption {
	return func(s *models.StudioProfile) {
		s.City = city
		s.Latitude = &lat
		s.Longitude = &lng
	}
}

func WithTypes(types ...string) StudioOption {
	return func(s *models.StudioProfile) { s.StudioTypes = models.NewStringList(types) }
}

func WithStatus(status models.StudioStatus, visible bool) StudioOption {
	return func(s *models.StudioProfile) {
		s.Status = status
		s.IsVisible = visible
	}
}

func Featured(until time.Time) StudioOption {
	return func(s *models.StudioProfile) {
		s.IsFeatured = true
		s.FeaturedUntil = &until
	}
}

func MembershipExpires(at time.Time) StudioOption {
	return func(s *models.StudioProfile) { s.MembershipExpiresAt = &at }
}

// CreateStudio inserts an active, visible studio owned by a fresh user.
func CreateStudio(t *testing.T, db *gorm.DB, username string, opts ...StudioOption) (*models.User, *models.StudioProfile) {
	t.Helper()

	owner := CreateUser(t, db, username+"@example.com", models.UserRoleStudioOwner, models.UserStatusActive)
	name := username
	owner.Username = &name
	owner.MembershipTier = models.MembershipTierPremium
	require.NoError(t, db.Save(owner).Error)

	expires := time.Now().UTC().AddDate(1, 0, 0)
	studio := &models.StudioProfile{
		UserID:              owner.ID,
		Username:            username,
		Name:                strings.ToUpper(username[:1]) + username[1:] + " Studio",
		Description:         "Voiceover booth",
		StudioTypes:         models.NewStringList([]string{"HOME"}),
		Equipment:           models.NewStringList(nil),
		Services:            models.NewStringList(nil),
		Status:              models.StudioStatusActive,
		IsVisible:           true,
		MembershipExpiresAt: &expires,
	}
	for _, opt := range opts {
		opt(studio)
	}
	require.NoError(t, db.Create(studio).Error)
	return owner, studio
}
