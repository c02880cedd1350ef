package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/metrics"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/services/payments"
	"studiofinder_backend/pkg/apperrors"
)

const (
	MembershipPeriod = 365 * 24 * time.Hour
	FeaturedPeriod   = 30 * 24 * time.Hour
)

// Webhook outcomes reported back to the provider and to metrics.
const (
	WebhookProcessed = "processed"
	WebhookDuplicate = "duplicate"
	WebhookIgnored   = "ignored"
	WebhookRefunded  = "refunded"
	WebhookFailed    = "failed_recorded"
)

type WebhookResult struct {
	Received bool   `json:"received"`
	Result   string `json:"result"`
	Type     string `json:"type,omitempty"`
}

type PaymentService interface {
	HandleWebhook(ctx context.Context, db *gorm.DB, provider models.PaymentProvider, payload []byte, headers http.Header) (*WebhookResult, error)
}

type PaymentServiceImpl struct {
	paymentRepo      repositories.PaymentRepository
	userRepo         repositories.UserRepository
	studioRepo       repositories.StudioRepository
	subscriptionRepo repositories.SubscriptionRepository
	gateways         map[models.PaymentProvider]payments.Gateway
	notifier         *Notifier
	now              func() time.Time
}

func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	studioRepo repositories.StudioRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	gateways []payments.Gateway,
	notifier *Notifier,
) *PaymentServiceImpl {
	byProvider := make(map[models.PaymentProvider]payments.Gateway, len(gateways))
	for _, g := range gateways {
		byProvider[g.Provider()] = g
	}
	return &PaymentServiceImpl{
		paymentRepo:      paymentRepo,
		userRepo:         userRepo,
		studioRepo:       studioRepo,
		subscriptionRepo: subscriptionRepo,
		gateways:         byProvider,
		notifier:         notifier,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// HandleWebhook verifies a provider callback and applies it. Replays of an
// already recorded session are acknowledged without side effects.
func (s *PaymentServiceImpl) HandleWebhook(ctx context.Context, db *gorm.DB, provider models.PaymentProvider, payload []byte, headers http.Header) (*WebhookResult, error) {
	providerLabel := string(provider)

	gateway, ok := s.gateways[provider]
	if !ok || !gateway.Enabled() {
		metrics.RecordWebhook(providerLabel, "unknown", "unavailable")
		return nil, apperrors.ErrPaymentProviderUnavailable
	}

	event, err := gateway.ParseWebhook(ctx, payload, headers)
	if err != nil {
		metrics.RecordWebhook(providerLabel, "unknown", "rejected")
		logger.CtxWarn(ctx, "webhook rejected", "provider", provider, "error", err)
		return nil, err
	}

	result, err := s.apply(ctx, db, event)
	if err != nil {
		metrics.RecordWebhook(providerLabel, event.Type, "error")
		return nil, err
	}

	metrics.RecordWebhook(providerLabel, event.Type, result)
	logger.CtxInfo(ctx, "webhook handled",
		"provider", provider, "type", event.Type, "session_id", event.SessionID, "result", result)
	return &WebhookResult{Received: true, Result: result, Type: event.Type}, nil
}

func (s *PaymentServiceImpl) apply(ctx context.Context, db *gorm.DB, event *payments.WebhookEvent) (string, error) {
	switch event.Kind {
	case payments.EventPaymentSucceeded:
		return s.recordSuccess(ctx, db, event)
	case payments.EventPaymentFailed:
		return s.recordFailure(db, event)
	case payments.EventRefunded:
		return s.recordRefund(ctx, db, event)
	default:
		return WebhookIgnored, nil
	}
}

func (s *PaymentServiceImpl) recordSuccess(ctx context.Context, db *gorm.DB, event *payments.WebhookEvent) (string, error) {
	meta, err := payments.ValidateCheckoutMetadata(event.Metadata)
	if err != nil {
		return "", err
	}

	now := s.now()
	tx := db.Begin()
	if tx.Error != nil {
		return "", apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, meta.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", apperrors.ErrInvalidPaymentMetadata.WithDetails(map[string]string{
				payments.MetaUserID: "unknown user",
			})
		}
		return "", apperrors.InternalError(err)
	}

	payment := &models.Payment{
		UserID:            user.ID,
		Provider:          event.Provider,
		ProviderSessionID: event.SessionID,
		ProviderPaymentID: event.PaymentID,
		Purpose:           meta.Purpose,
		Amount:            event.Amount,
		Currency:          event.Currency,
		Status:            models.PaymentStatusSucceeded,
		PaidAt:            &now,
	}
	if err := s.paymentRepo.Create(tx, payment); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return WebhookDuplicate, nil
		}
		return "", apperrors.InternalError(err)
	}

	var studio *models.StudioProfile
	switch meta.Purpose {
	case models.PaymentPurposeMembership:
		studio, err = s.applyMembership(tx, user, meta, event.Provider, now)
	case models.PaymentPurposeFeatured:
		err = s.applyFeatured(ctx, tx, user, now)
	}
	if err != nil {
		return "", err
	}

	if err := tx.Commit().Error; err != nil {
		if repositories.IsUniqueViolation(err) {
			return WebhookDuplicate, nil
		}
		return "", apperrors.InternalError(err)
	}

	if studio != nil {
		_ = s.notifier.Send(ctx, user.Email, "Your studio is live", email.TemplateMembershipActive, email.TemplateData{
			"Name":      user.DisplayName,
			"Username":  studio.Username,
			"ExpiresAt": studio.MembershipExpiresAt.Format("2 January 2006"),
			"Link":      s.notifier.Link("/" + studio.Username),
		})
	}
	return WebhookProcessed, nil
}

// applyMembership activates the user and their studio for one more year.
func (s *PaymentServiceImpl) applyMembership(tx *gorm.DB, user *models.User, meta *payments.CheckoutMetadata, provider models.PaymentProvider, now time.Time) (*models.StudioProfile, error) {
	username := user.UsernameValue()
	if username == "" {
		username = meta.Username
	}

	userFields := map[string]interface{}{
		"status":          models.UserStatusActive,
		"membership_tier": models.MembershipTierPremium,
	}
	if user.UsernameValue() == "" && username != "" {
		userFields["username"] = username
	}
	if user.Role == models.UserRoleUser {
		userFields["role"] = models.UserRoleStudioOwner
	}
	if err := s.userRepo.UpdateFields(tx, user.ID, userFields); err != nil {
		return nil, apperrors.InternalError(err)
	}

	studio, err := s.studioRepo.FindByUserID(tx, user.ID)
	if err != nil && !errors.Is(err, repositories.ErrStudioNotFound) {
		return nil, apperrors.InternalError(err)
	}

	expires := extend(nil, now, MembershipPeriod)
	if studio == nil {
		if username == "" {
			return nil, apperrors.ErrUsernameRequired
		}
		studio = &models.StudioProfile{
			UserID:              user.ID,
			Username:            username,
			Name:                user.DisplayName,
			StudioTypes:         models.NewStringList(nil),
			Equipment:           models.NewStringList(nil),
			Services:            models.NewStringList(nil),
			Status:              models.StudioStatusActive,
			IsVisible:           true,
			MembershipExpiresAt: &expires,
		}
		if err := s.studioRepo.Create(tx, studio); err != nil {
			return nil, handleRepoError(err)
		}
	} else {
		expires = extend(studio.MembershipExpiresAt, now, MembershipPeriod)
		if err := s.studioRepo.UpdateFields(tx, studio.ID, map[string]interface{}{
			"status":                   models.StudioStatusActive,
			"is_visible":               true,
			"membership_expires_at":    expires,
			"renewal_reminder_sent_at": nil,
		}); err != nil {
			return nil, apperrors.InternalError(err)
		}
		studio.Status = models.StudioStatusActive
		studio.IsVisible = true
		studio.MembershipExpiresAt = &expires
		studio.RenewalReminderSentAt = nil
	}

	if err := s.subscriptionRepo.Upsert(tx, &models.Subscription{
		UserID:             user.ID,
		Tier:               models.MembershipTierPremium,
		Provider:           provider,
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   expires,
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return studio, nil
}

// applyFeatured extends the featured window unless the cap is reached, in
// which case the payment stays recorded and an admin has to follow up.
func (s *PaymentServiceImpl) applyFeatured(ctx context.Context, tx *gorm.DB, user *models.User, now time.Time) error {
	studio, err := s.studioRepo.FindByUserID(tx, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrStudioNotFound) {
			logger.CtxWarn(ctx, "featured payment for user without studio", "user_id", user.ID)
			return nil
		}
		return apperrors.InternalError(err)
	}

	featured, err := s.studioRepo.CountFeatured(tx, studio.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if featured >= models.MaxFeaturedStudios {
		logger.CtxWarn(ctx, "featured limit reached, payment recorded without featuring",
			"studio_id", studio.ID, "featured", featured)
		return nil
	}

	until := extend(studio.FeaturedUntil, now, FeaturedPeriod)
	if err := s.studioRepo.UpdateFields(tx, studio.ID, map[string]interface{}{
		"is_featured":    true,
		"featured_until": until,
	}); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *PaymentServiceImpl) recordFailure(db *gorm.DB, event *payments.WebhookEvent) (string, error) {
	meta, err := payments.ValidateCheckoutMetadata(event.Metadata)
	if err != nil {
		return "", err
	}

	err = s.paymentRepo.Create(db, &models.Payment{
		UserID:            meta.UserID,
		Provider:          event.Provider,
		ProviderSessionID: event.SessionID,
		ProviderPaymentID: event.PaymentID,
		Purpose:           meta.Purpose,
		Amount:            event.Amount,
		Currency:          event.Currency,
		Status:            models.PaymentStatusFailed,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return WebhookDuplicate, nil
		}
		return "", apperrors.InternalError(err)
	}
	return WebhookFailed, nil
}

func (s *PaymentServiceImpl) recordRefund(ctx context.Context, db *gorm.DB, event *payments.WebhookEvent) (string, error) {
	if event.PaymentID == "" {
		return WebhookIgnored, nil
	}
	rows, err := s.paymentRepo.MarkRefunded(db, event.Provider, event.PaymentID, s.now())
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	if rows == 0 {
		logger.CtxWarn(ctx, "refund for unknown payment", "provider", event.Provider, "payment_id", event.PaymentID)
		return WebhookIgnored, nil
	}
	return WebhookRefunded, nil
}

// extend adds period to whichever is later: now or the current end.
func extend(current *time.Time, now time.Time, period time.Duration) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.Add(period).UTC()
}
