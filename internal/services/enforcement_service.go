package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/metrics"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/pkg/apperrors"
)

// ReminderWindow is how long before expiry the renewal reminder goes out.
const ReminderWindow = 7 * 24 * time.Hour

const (
	ActionExpireMembership = "expire_membership"
	ActionUnfeature        = "unfeature"
	ActionRemind           = "renewal_reminder"
)

type EnforcementService interface {
	EnforceSubscriptions(ctx context.Context, db *gorm.DB, now time.Time, dryRun bool) (*dto.EnforcementReport, error)
}

type EnforcementServiceImpl struct {
	studioRepo       repositories.StudioRepository
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
	notifier         *Notifier
}

func NewEnforcementService(
	studioRepo repositories.StudioRepository,
	userRepo repositories.UserRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	notifier *Notifier,
) EnforcementService {
	return &EnforcementServiceImpl{
		studioRepo:       studioRepo,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		notifier:         notifier,
	}
}

// EnforceSubscriptions expires lapsed memberships, drops lapsed featured
// flags and sends renewal reminders in a single pass. The state changes
// commit together; reminders are sent afterwards, one by one.
func (s *EnforcementServiceImpl) EnforceSubscriptions(ctx context.Context, db *gorm.DB, now time.Time, dryRun bool) (report *dto.EnforcementReport, err error) {
	start := time.Now()
	now = now.UTC()
	defer func() {
		logger.WorkerLog("enforcement", "enforce_subscriptions", time.Since(start), err)
		if !dryRun {
			if report != nil {
				metrics.RecordEnforcement(err, report.ExpiredMemberships, report.ExpiredFeatured, report.RemindersSent)
			} else {
				metrics.RecordEnforcement(err, 0, 0, 0)
			}
		}
	}()

	expired, err := s.studioRepo.FindExpiredMemberships(db, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	lapsedFeatured, err := s.studioRepo.FindExpiredFeatured(db, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	expiring, err := s.studioRepo.FindNeedingReminder(db, now, now.Add(ReminderWindow))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	report = &dto.EnforcementReport{
		RanAt:             now.Format(time.RFC3339),
		DryRun:            dryRun,
		ExpiredStudioIDs:  []string{},
		UnfeaturedIDs:     []string{},
		RemindedStudioIDs: []string{},
		Changes:           []dto.EnforcementChange{},
	}

	expiredSet := make(map[string]bool, len(expired))
	userIDs := make([]string, 0, len(expired))
	for _, studio := range expired {
		expiredSet[studio.ID] = true
		userIDs = append(userIDs, studio.UserID)
		report.ExpiredStudioIDs = append(report.ExpiredStudioIDs, studio.ID)
		report.Changes = append(report.Changes, change(studio, ActionExpireMembership, studio.MembershipExpiresAt))
	}

	// A studio whose membership lapsed is unfeatured by step one already.
	unfeature := make([]models.StudioProfile, 0, len(lapsedFeatured))
	for _, studio := range lapsedFeatured {
		if expiredSet[studio.ID] {
			continue
		}
		unfeature = append(unfeature, studio)
		report.UnfeaturedIDs = append(report.UnfeaturedIDs, studio.ID)
		report.Changes = append(report.Changes, change(studio, ActionUnfeature, studio.FeaturedUntil))
	}
	report.ExpiredMemberships = len(expired)
	report.ExpiredFeatured = len(unfeature)

	if dryRun {
		for _, studio := range expiring {
			report.RemindedStudioIDs = append(report.RemindedStudioIDs, studio.ID)
			report.Changes = append(report.Changes, change(studio, ActionRemind, studio.MembershipExpiresAt))
		}
		report.RemindersSent = len(expiring)
		return report, nil
	}

	if err := s.applyExpiry(db, expired, unfeature, userIDs); err != nil {
		return nil, err
	}

	for _, studio := range expiring {
		if !s.remind(ctx, db, studio, now) {
			continue
		}
		report.RemindedStudioIDs = append(report.RemindedStudioIDs, studio.ID)
		report.Changes = append(report.Changes, change(studio, ActionRemind, studio.MembershipExpiresAt))
	}
	report.RemindersSent = len(report.RemindedStudioIDs)

	logger.CtxInfo(ctx, "subscription enforcement finished",
		"expired_memberships", report.ExpiredMemberships,
		"expired_featured", report.ExpiredFeatured,
		"reminders_sent", report.RemindersSent)
	return report, nil
}

func (s *EnforcementServiceImpl) applyExpiry(db *gorm.DB, expired, unfeature []models.StudioProfile, userIDs []string) error {
	if len(expired) == 0 && len(unfeature) == 0 {
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	for _, studio := range expired {
		if err := s.studioRepo.UpdateFields(tx, studio.ID, map[string]interface{}{
			"status":      models.StudioStatusInactive,
			"is_visible":  false,
			"is_featured": false,
		}); err != nil {
			return apperrors.InternalError(err)
		}
	}
	for _, studio := range unfeature {
		if err := s.studioRepo.UpdateFields(tx, studio.ID, map[string]interface{}{"is_featured": false}); err != nil {
			return apperrors.InternalError(err)
		}
	}
	if err := s.subscriptionRepo.ExpireForUsers(tx, userIDs); err != nil {
		return apperrors.InternalError(err)
	}
	for _, userID := range userIDs {
		err := s.userRepo.UpdateFields(tx, userID, map[string]interface{}{"membership_tier": models.MembershipTierBasic})
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.InternalError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// remind mails the owner and stamps the studio so the reminder goes out
// once per membership period.
func (s *EnforcementServiceImpl) remind(ctx context.Context, db *gorm.DB, studio models.StudioProfile, now time.Time) bool {
	owner, err := s.userRepo.FindByID(db, studio.UserID)
	if err != nil {
		logger.CtxWarn(ctx, "renewal reminder skipped, owner not found", "studio_id", studio.ID, "error", err)
		return false
	}

	expiresAt := ""
	if studio.MembershipExpiresAt != nil {
		expiresAt = studio.MembershipExpiresAt.Format("2 January 2006")
	}
	if err := s.notifier.Send(ctx, owner.Email, "Your membership expires soon", email.TemplateRenewalReminder, email.TemplateData{
		"Name":       owner.DisplayName,
		"StudioName": studio.Name,
		"ExpiresAt":  expiresAt,
		"Link":       s.notifier.Link("/dashboard/membership"),
	}); err != nil {
		return false
	}

	if err := s.studioRepo.UpdateFields(db, studio.ID, map[string]interface{}{"renewal_reminder_sent_at": now}); err != nil {
		logger.CtxWithError(ctx, "failed to stamp renewal reminder", err, "studio_id", studio.ID)
	}
	return true
}

func change(studio models.StudioProfile, action string, deadline *time.Time) dto.EnforcementChange {
	c := dto.EnforcementChange{StudioID: studio.ID, Username: studio.Username, Action: action}
	if deadline != nil {
		c.Deadline = deadline.UTC().Format(time.RFC3339)
	}
	return c
}
