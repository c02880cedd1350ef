package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"studiofinder_backend/internal/auth"
	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/models"
)

// SeedFirstAdmin creates the bootstrap admin when no user holds adminEmail.
// It reports whether a user was created.
func SeedFirstAdmin(db *gorm.DB, adminEmail, adminPassword string) (bool, error) {
	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))
	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return false, nil
	}
	if err := auth.ValidatePassword(adminPassword); err != nil {
		return false, fmt.Errorf("first admin password: %w", err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	var existing models.User
	err := tx.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check for admin user: %w", err)
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:          adminEmail,
		PasswordHash:   hash,
		DisplayName:    "Administrator",
		Role:           models.UserRoleAdmin,
		Status:         models.UserStatusActive,
		MembershipTier: models.MembershipTierBasic,
		EmailVerified:  true,
	}
	if err := tx.Create(admin).Error; err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return false, err
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return true, nil
}
