package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"studiofinder_backend/internal/auth"
	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/pkg/apperrors"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = time.Hour

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(db *gorm.DB, userID string) (*models.User, error)
	VerifyEmail(db *gorm.DB, token string) error
	RequestPasswordReset(ctx context.Context, db *gorm.DB, email string) error
	ResetPassword(db *gorm.DB, token, newPassword string) error
	ChangePassword(db *gorm.DB, userID, currentPassword, newPassword string) error
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	notifier *Notifier
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokens *auth.TokenManager,
	notifier *Notifier,
) AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		notifier: notifier,
	}
}

// Register creates a pending studio owner and mails a verification link.
func (s *AuthServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:             normalizeEmail(req.Email),
		PasswordHash:      hash,
		DisplayName:       strings.TrimSpace(req.DisplayName),
		Role:              models.UserRoleStudioOwner,
		Status:            models.UserStatusPending,
		MembershipTier:    models.MembershipTierBasic,
		VerificationToken: newToken(),
	}
	if err := s.userRepo.Create(db, user); err != nil {
		return nil, handleRepoError(err)
	}

	link := s.notifier.Link("/verify-email?token=" + url.QueryEscape(user.VerificationToken))
	_ = s.notifier.Send(ctx, user.Email, "Verify your email", email.TemplateVerifyEmail, email.TemplateData{
		"Name": user.DisplayName,
		"Link": link,
	})

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrUserSuspended
	}

	return s.issue(user)
}

func (s *AuthServiceImpl) Me(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return user, nil
}

func (s *AuthServiceImpl) VerifyEmail(db *gorm.DB, token string) error {
	if token == "" {
		return apperrors.ErrInvalidToken
	}
	user, err := s.userRepo.FindByVerificationToken(db, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	return handleRepoError(s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{
		"email_verified":     true,
		"verification_token": "",
	}))
}

// RequestPasswordReset never reveals whether the address is registered.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, db *gorm.DB, address string) error {
	user, err := s.userRepo.FindByEmail(db, normalizeEmail(address))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}

	token := newToken()
	expires := time.Now().UTC().Add(ResetTokenTTL)
	if err := s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{
		"reset_token":            token,
		"reset_token_expires_at": expires,
	}); err != nil {
		return apperrors.InternalError(err)
	}

	_ = s.notifier.Send(ctx, user.Email, "Reset your password", email.TemplatePasswordReset, email.TemplateData{
		"Name": user.DisplayName,
		"Link": s.notifier.Link("/reset-password?token=" + url.QueryEscape(token)),
	})
	return nil
}

func (s *AuthServiceImpl) ResetPassword(db *gorm.DB, token, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.userRepo.FindByResetToken(db, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	return handleRepoError(s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{
		"password_hash":          hash,
		"reset_token":            "",
		"reset_token_expires_at": nil,
	}))
}

func (s *AuthServiceImpl) ChangePassword(db *gorm.DB, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return handleRepoError(err)
	}
	if !auth.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	return handleRepoError(s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{
		"password_hash": hash,
	}))
}

func (s *AuthServiceImpl) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        user,
	}, nil
}
