package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/internal/testutil"
	"studiofinder_backend/pkg/apperrors"
)

func newCampaign(t *testing.T, env *testEnv, audience models.CampaignAudience) *models.EmailCampaign {
	t.Helper()
	admin := testutil.CreateUser(t, env.db, "sender@example.com", models.UserRoleAdmin, models.UserStatusActive)
	campaign, err := env.svc.CampaignService.Create(env.db, admin.ID, &dto.CampaignRequest{
		Name: "Launch", Subject: " We are live ", HTMLBody: "<p>Hello</p>", Audience: audience,
	})
	require.NoError(t, err)
	return campaign
}

func TestCampaignDraftLifecycle(t *testing.T) {
	env := newTestEnv(t)
	campaign := newCampaign(t, env, models.CampaignAudienceAllUsers)
	assert.Equal(t, models.CampaignStatusDraft, campaign.Status)
	assert.Equal(t, "We are live", campaign.Subject)

	updated, err := env.svc.CampaignService.Update(env.db, campaign.ID, &dto.CampaignRequest{
		Name: "Launch v2", Subject: "Live", HTMLBody: "<p>Hi</p>", Audience: models.CampaignAudienceWaitlist,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignAudienceWaitlist, updated.Audience)

	list, err := env.svc.CampaignService.List(env.db, &dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	require.NoError(t, env.svc.CampaignService.Delete(env.db, campaign.ID))
	_, err = env.svc.CampaignService.Get(env.db, campaign.ID)
	assert.ErrorIs(t, err, apperrors.ErrCampaignNotFound)
}

func TestCampaignSendRecordsFailuresAndResends(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	campaign := newCampaign(t, env, models.CampaignAudienceWaitlist)
	for _, entry := range []dto.JoinWaitlistRequest{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Cat", Email: "cat@example.com"},
	} {
		_, err := env.svc.WaitlistService.Join(ctx, env.db, &entry)
		require.NoError(t, err)
	}
	env.emails.FailFor["bob@example.com"] = true

	preview, err := env.svc.CampaignService.Preview(env.db, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, preview.Recipients)
	assert.Equal(t, 3, preview.PendingToSend)

	result, err := env.svc.CampaignService.Send(ctx, env.db, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, models.CampaignStatusSent, result.Campaign.Status)
	assert.Equal(t, 2, result.Campaign.SentCount)
	assert.Equal(t, 1, result.Campaign.FailedCount)
	require.Len(t, env.emails.ByTemplate(email.TemplateCampaign), 2)

	failed, err := env.svc.CampaignService.Deliveries(env.db, campaign.ID, &dto.DeliveryQuery{Status: "FAILED"})
	require.NoError(t, err)
	rows := failed.Data.([]models.EmailDelivery)
	require.Len(t, rows, 1)
	assert.Equal(t, "bob@example.com", rows[0].Email)
	assert.NotEmpty(t, rows[0].Error)

	_, err = env.svc.CampaignService.Update(env.db, campaign.ID, &dto.CampaignRequest{
		Name: "x", Subject: "x", HTMLBody: "x", Audience: models.CampaignAudienceWaitlist,
	})
	assert.ErrorIs(t, err, apperrors.ErrCampaignNotEditable)
	assert.ErrorIs(t, env.svc.CampaignService.Delete(env.db, campaign.ID), apperrors.ErrCampaignNotEditable)

	// A re-send only retries the failed address.
	delete(env.emails.FailFor, "bob@example.com")
	result, err = env.svc.CampaignService.Send(ctx, env.db, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 3, result.Campaign.SentCount)
	assert.Equal(t, 0, result.Campaign.FailedCount)

	_, err = env.svc.CampaignService.Send(ctx, env.db, campaign.ID)
	assert.ErrorIs(t, err, apperrors.ErrCampaignNothingToSend)
}

func TestCampaignFailsWhenNothingDelivered(t *testing.T) {
	env := newTestEnv(t)
	campaign := newCampaign(t, env, models.CampaignAudienceAllUsers)
	env.emails.FailFor["sender@example.com"] = true

	result, err := env.svc.CampaignService.Send(context.Background(), env.db, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusFailed, result.Campaign.Status)
	assert.Nil(t, result.Campaign.SentAt)
}

func TestCampaignSendInterruptedCanResume(t *testing.T) {
	env := newTestEnv(t)
	campaign := newCampaign(t, env, models.CampaignAudienceWaitlist)
	_, err := env.svc.WaitlistService.Join(context.Background(), env.db, &dto.JoinWaitlistRequest{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = env.svc.CampaignService.Send(ctx, env.db, campaign.ID)
	assert.ErrorIs(t, err, apperrors.ErrCampaignInterrupted)

	stored, err := env.svc.CampaignService.Get(env.db, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusFailed, stored.Status)
	assert.Nil(t, stored.SentAt)
	assert.Zero(t, stored.SentCount)
	assert.Empty(t, env.emails.ByTemplate(email.TemplateCampaign))

	result, err := env.svc.CampaignService.Send(context.Background(), env.db, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, models.CampaignStatusSent, result.Campaign.Status)
	assert.NotNil(t, result.Campaign.SentAt)
}

func TestCampaignSendRejectsConcurrentSend(t *testing.T) {
	env := newTestEnv(t)
	campaign := newCampaign(t, env, models.CampaignAudienceAllUsers)
	require.NoError(t, env.db.Model(&models.EmailCampaign{}).Where("id = ?", campaign.ID).
		Update("status", models.CampaignStatusSending).Error)

	_, err := env.svc.CampaignService.Send(context.Background(), env.db, campaign.ID)
	requireCode(t, err, apperrors.CodeConflict)
	assert.ErrorIs(t, err, apperrors.ErrCampaignSending)
	assert.Empty(t, env.emails.ByTemplate(email.TemplateCampaign))
}

func TestCampaignStudioOwnerAudience(t *testing.T) {
	env := newTestEnv(t)
	campaign := newCampaign(t, env, models.CampaignAudienceStudioOwners)
	testutil.CreateStudio(t, env.db, "ownerone")
	testutil.CreateStudio(t, env.db, "lapsed", testutil.WithStatus(models.StudioStatusInactive, false))

	preview, err := env.svc.CampaignService.Preview(env.db, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, preview.Recipients)
	assert.Equal(t, []string{"ownerone@example.com"}, preview.SampleEmails)
}

func TestWaitlistJoinIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.WaitlistService.Join(ctx, env.db, &dto.JoinWaitlistRequest{Name: "Dee", Email: "Dee@Example.com"})
	require.NoError(t, err)
	assert.False(t, first.AlreadyJoined)
	assert.Equal(t, "dee@example.com", first.Entry.Email)

	second, err := env.svc.WaitlistService.Join(ctx, env.db, &dto.JoinWaitlistRequest{Name: "Dee again", Email: "dee@example.com"})
	require.NoError(t, err)
	assert.True(t, second.AlreadyJoined)
	assert.Equal(t, first.Entry.ID, second.Entry.ID)

	assert.Len(t, env.emails.ByTemplate(email.TemplateWaitlistConfirmation), 1)
}
