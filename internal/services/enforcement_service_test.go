package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/services"
	"studiofinder_backend/internal/testutil"
)

type enforcementFixture struct {
	expired, lapsedFeature, expiring, healthy *models.StudioProfile
	expiredOwner                              *models.User
}

func seedEnforcement(t *testing.T, env *testEnv, now time.Time) enforcementFixture {
	t.Helper()
	var f enforcementFixture

	f.expiredOwner, f.expired = testutil.CreateStudio(t, env.db, "expired",
		testutil.MembershipExpires(now.Add(-24*time.Hour)), testutil.Featured(now.Add(-time.Hour)))
	require.NoError(t, env.db.Create(&models.Subscription{
		UserID: f.expiredOwner.ID, Tier: models.MembershipTierPremium, Provider: models.PaymentProviderStripe,
		Status: models.SubscriptionStatusActive, CurrentPeriodStart: now.AddDate(-1, 0, -1), CurrentPeriodEnd: now.Add(-24 * time.Hour),
	}).Error)

	_, f.lapsedFeature = testutil.CreateStudio(t, env.db, "lapsedfeature", testutil.Featured(now.Add(-time.Hour)))
	_, f.expiring = testutil.CreateStudio(t, env.db, "expiring", testutil.MembershipExpires(now.Add(3*24*time.Hour)))
	_, f.healthy = testutil.CreateStudio(t, env.db, "healthy", testutil.Featured(now.Add(10*24*time.Hour)))
	return f
}

func TestEnforcementDryRunChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	f := seedEnforcement(t, env, now)

	report, err := env.svc.EnforcementService.EnforceSubscriptions(context.Background(), env.db, now, true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, []string{f.expired.ID}, report.ExpiredStudioIDs)
	assert.Equal(t, []string{f.lapsedFeature.ID}, report.UnfeaturedIDs)
	assert.Equal(t, []string{f.expiring.ID}, report.RemindedStudioIDs)
	assert.Len(t, report.Changes, 3)

	assert.Equal(t, models.StudioStatusActive, env.reloadStudio(t, f.expired.ID).Status)
	assert.True(t, env.reloadStudio(t, f.lapsedFeature.ID).IsFeatured)
	assert.Empty(t, env.emails.ByTemplate(email.TemplateRenewalReminder))
}

func TestEnforcementAppliesChanges(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	f := seedEnforcement(t, env, now)
	ctx := context.Background()

	report, err := env.svc.EnforcementService.EnforceSubscriptions(ctx, env.db, now, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ExpiredMemberships)
	assert.Equal(t, 1, report.ExpiredFeatured)
	assert.Equal(t, 1, report.RemindersSent)

	expired := env.reloadStudio(t, f.expired.ID)
	assert.Equal(t, models.StudioStatusInactive, expired.Status)
	assert.False(t, expired.IsVisible)
	assert.False(t, expired.IsFeatured)
	assert.Equal(t, models.MembershipTierBasic, env.reloadUser(t, f.expiredOwner.ID).MembershipTier)

	var sub models.Subscription
	require.NoError(t, env.db.First(&sub, "user_id = ?", f.expiredOwner.ID).Error)
	assert.Equal(t, models.SubscriptionStatusExpired, sub.Status)

	lapsed := env.reloadStudio(t, f.lapsedFeature.ID)
	assert.False(t, lapsed.IsFeatured)
	assert.Equal(t, models.StudioStatusActive, lapsed.Status)

	healthy := env.reloadStudio(t, f.healthy.ID)
	assert.True(t, healthy.IsFeatured)

	reminders := env.emails.ByTemplate(email.TemplateRenewalReminder)
	require.Len(t, reminders, 1)
	assert.Equal(t, []string{"expiring@example.com"}, reminders[0].To)
	assert.NotNil(t, env.reloadStudio(t, f.expiring.ID).RenewalReminderSentAt)

	// A second pass finds nothing left to do.
	report, err = env.svc.EnforcementService.EnforceSubscriptions(ctx, env.db, now, false)
	require.NoError(t, err)
	assert.Zero(t, report.ExpiredMemberships)
	assert.Zero(t, report.ExpiredFeatured)
	assert.Zero(t, report.RemindersSent)
	assert.Len(t, env.emails.ByTemplate(email.TemplateRenewalReminder), 1)
}

func TestEnforcementReminderRetriedAfterMailFailure(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	f := seedEnforcement(t, env, now)
	env.emails.FailFor["expiring@example.com"] = true

	report, err := env.svc.EnforcementService.EnforceSubscriptions(context.Background(), env.db, now, false)
	require.NoError(t, err)
	assert.Zero(t, report.RemindersSent)
	assert.Nil(t, env.reloadStudio(t, f.expiring.ID).RenewalReminderSentAt)

	delete(env.emails.FailFor, "expiring@example.com")
	report, err = env.svc.EnforcementService.EnforceSubscriptions(context.Background(), env.db, now.Add(time.Minute), false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.RemindersSent)
}

func TestMembershipRenewalClearsReminder(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	f := seedEnforcement(t, env, now)

	_, err := env.svc.EnforcementService.EnforceSubscriptions(context.Background(), env.db, now, false)
	require.NoError(t, err)
	require.NotNil(t, env.reloadStudio(t, f.expiring.ID).RenewalReminderSentAt)

	env.stripe.Event = testutil.SucceededEvent("cs_renewal", f.expiring.UserID, models.PaymentPurposeMembership)
	_, err = env.webhook(t, models.PaymentProviderStripe)
	require.NoError(t, err)

	renewed := env.reloadStudio(t, f.expiring.ID)
	assert.Nil(t, renewed.RenewalReminderSentAt)
	assert.WithinDuration(t, now.Add(3*24*time.Hour).Add(services.MembershipPeriod), *renewed.MembershipExpiresAt, time.Second)
}
