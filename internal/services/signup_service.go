package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/internal/services/payments"
	"studiofinder_backend/internal/validator"
	"studiofinder_backend/pkg/apperrors"
)

// SignupService drives the membership wizard: username, checkout, status.
type SignupService interface {
	CheckUsername(db *gorm.DB, userID, username string) (*dto.UsernameAvailability, error)
	ReserveUsername(db *gorm.DB, userID, username string) (*models.User, error)
	StartCheckout(ctx context.Context, db *gorm.DB, userID string, req *dto.CheckoutRequest) (*payments.CheckoutSession, error)
	CapturePayPalOrder(ctx context.Context, orderID string) error
	MembershipStatus(db *gorm.DB, userID string) (*dto.MembershipStatus, error)
}

type SignupServiceImpl struct {
	userRepo   repositories.UserRepository
	studioRepo repositories.StudioRepository
	gateways   map[models.PaymentProvider]payments.Gateway
	baseURL    string
}

func NewSignupService(
	userRepo repositories.UserRepository,
	studioRepo repositories.StudioRepository,
	gateways []payments.Gateway,
	baseURL string,
) SignupService {
	byProvider := make(map[models.PaymentProvider]payments.Gateway, len(gateways))
	for _, g := range gateways {
		byProvider[g.Provider()] = g
	}
	return &SignupServiceImpl{
		userRepo:   userRepo,
		studioRepo: studioRepo,
		gateways:   byProvider,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (s *SignupServiceImpl) CheckUsername(db *gorm.DB, userID, username string) (*dto.UsernameAvailability, error) {
	name := validator.NormalizeUsername(username)
	result := &dto.UsernameAvailability{Username: name}

	if reason := validator.CheckUsernameSyntax(name); reason != "" {
		result.Reason = reason
		return result, nil
	}

	taken, err := s.userRepo.UsernameTaken(db, name, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if taken {
		result.Reason = "Username is already taken"
		return result, nil
	}

	result.Available = true
	return result, nil
}

// ReserveUsername is allowed until the studio exists; after that the
// username is the studio's public URL and is locked.
func (s *SignupServiceImpl) ReserveUsername(db *gorm.DB, userID, username string) (*models.User, error) {
	name := validator.NormalizeUsername(username)
	if reason := validator.CheckUsernameSyntax(name); reason != "" {
		return nil, apperrors.ErrInvalidUsername.WithDetails(map[string]string{"username": reason})
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	switch user.Status {
	case models.UserStatusSuspended:
		return nil, apperrors.ErrUserSuspended
	case models.UserStatusActive:
		if user.Studio != nil {
			return nil, apperrors.ErrUsernameLocked
		}
	}

	taken, err := s.userRepo.UsernameTaken(tx, name, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if taken {
		return nil, apperrors.ErrUsernameTaken
	}

	if err := s.userRepo.UpdateFields(tx, user.ID, map[string]interface{}{"username": name}); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, apperrors.InternalError(err)
	}

	user.Username = &name
	return user, nil
}

func (s *SignupServiceImpl) StartCheckout(ctx context.Context, db *gorm.DB, userID string, req *dto.CheckoutRequest) (*payments.CheckoutSession, error) {
	purpose := models.PaymentPurpose(strings.ToUpper(req.Purpose))
	provider := models.PaymentProvider(strings.ToUpper(req.Provider))
	if provider == "" {
		provider = models.PaymentProviderStripe
	}

	gateway, ok := s.gateways[provider]
	if !ok || !gateway.Enabled() {
		return nil, apperrors.ErrPaymentProviderUnavailable
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrUserSuspended
	}

	switch purpose {
	case models.PaymentPurposeMembership:
		if user.UsernameValue() == "" {
			return nil, apperrors.ErrUsernameRequired
		}
	case models.PaymentPurposeFeatured:
		if user.Status != models.UserStatusActive || user.Studio == nil ||
			user.Studio.Status != models.StudioStatusActive {
			return nil, apperrors.ErrMembershipRequired
		}
	default:
		return nil, apperrors.NewBadRequestError("Unknown payment purpose")
	}

	session, err := gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		UserID:     user.ID,
		Username:   user.UsernameValue(),
		Email:      user.Email,
		Purpose:    purpose,
		SuccessURL: s.returnURL("/signup/success", provider, purpose),
		CancelURL:  s.returnURL("/signup/cancelled", provider, purpose),
	})
	if err != nil {
		return nil, apperrors.ExternalServiceError(err, "payment", "Could not start checkout")
	}

	logger.CtxInfo(ctx, "checkout started",
		"user_id", user.ID, "provider", provider, "purpose", purpose, "session_id", session.ID)
	return session, nil
}

func (s *SignupServiceImpl) CapturePayPalOrder(ctx context.Context, orderID string) error {
	gateway, ok := s.gateways[models.PaymentProviderPayPal]
	if !ok || !gateway.Enabled() {
		return apperrors.ErrPaymentProviderUnavailable
	}
	capturer, ok := gateway.(payments.OrderCapturer)
	if !ok {
		return apperrors.ErrPaymentProviderUnavailable
	}
	if err := capturer.CaptureOrder(ctx, orderID); err != nil {
		return apperrors.ExternalServiceError(err, "payment", "Could not capture PayPal order")
	}
	return nil
}

func (s *SignupServiceImpl) MembershipStatus(db *gorm.DB, userID string) (*dto.MembershipStatus, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	status := &dto.MembershipStatus{
		UserStatus: user.Status,
		Tier:       user.MembershipTier,
		Username:   user.UsernameValue(),
	}
	if sub := user.Subscription; sub != nil {
		status.SubscriptionStatus = sub.Status
		end := sub.CurrentPeriodEnd
		status.CurrentPeriodEnd = &end
	}

	studio := user.Studio
	if studio == nil {
		studio, err = s.studioRepo.FindByUserID(db, user.ID)
		if err != nil && !errors.Is(err, repositories.ErrStudioNotFound) {
			return nil, apperrors.InternalError(err)
		}
	}
	if studio != nil {
		status.StudioStatus = studio.Status
		status.IsFeatured = studio.IsFeatured
		status.FeaturedUntil = studio.FeaturedUntil
		status.MembershipExpiresAt = studio.MembershipExpiresAt
	}
	return status, nil
}

func (s *SignupServiceImpl) returnURL(path string, provider models.PaymentProvider, purpose models.PaymentPurpose) string {
	return s.baseURL + path + "?provider=" + strings.ToLower(string(provider)) +
		"&purpose=" + strings.ToLower(string(purpose))
}
