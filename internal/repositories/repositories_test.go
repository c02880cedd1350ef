package repositories_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiofinder_backend/internal/algorithms"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/testutil"
)

func TestStudioSearchCandidatesFilters(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewStudioRepository()

	testutil.CreateStudio(t, db, "london", testutil.WithLocation("London", 51.5, -0.12), testutil.WithTypes("HOME", "PODCAST"))
	testutil.CreateStudio(t, db, "leeds", testutil.WithLocation("Leeds", 53.8, -1.55), testutil.WithTypes("RECORDING"))
	testutil.CreateStudio(t, db, "hidden", testutil.WithLocation("London", 51.5, -0.12), testutil.WithStatus(models.StudioStatusActive, false))
	testutil.CreateStudio(t, db, "inactive", testutil.WithStatus(models.StudioStatusInactive, true))

	all, err := repo.SearchCandidates(db, repositories.StudioSearchFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	podcast, err := repo.SearchCandidates(db, repositories.StudioSearchFilter{StudioType: models.StudioTypePodcast})
	require.NoError(t, err)
	require.Len(t, podcast, 1)
	assert.Equal(t, "london", podcast[0].Username)

	byCity, err := repo.SearchCandidates(db, repositories.StudioSearchFilter{City: "leeds"})
	require.NoError(t, err)
	require.Len(t, byCity, 1)
	assert.Equal(t, "leeds", byCity[0].Username)

	box := algorithms.BoxAround(algorithms.Point{Lat: 51.5, Lng: -0.1}, 30)
	near, err := repo.SearchCandidates(db, repositories.StudioSearchFilter{Box: &box})
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "london", near[0].Username)

	text, err := repo.SearchCandidates(db, repositories.StudioSearchFilter{Query: "LEEDS"})
	require.NoError(t, err)
	assert.Len(t, text, 1)
}

func TestFindPublicByUsernameHidesInvisible(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewStudioRepository()

	testutil.CreateStudio(t, db, "visible")
	testutil.CreateStudio(t, db, "ghost", testutil.WithStatus(models.StudioStatusActive, false))

	studio, err := repo.FindPublicByUsername(db, "visible")
	require.NoError(t, err)
	assert.Equal(t, "visible", studio.Username)

	_, err = repo.FindPublicByUsername(db, "ghost")
	assert.ErrorIs(t, err, repositories.ErrStudioNotFound)
}

func TestCountFeaturedExcludesTarget(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewStudioRepository()

	until := time.Now().UTC().Add(24 * time.Hour)
	_, a := testutil.CreateStudio(t, db, "alpha", testutil.Featured(until))
	testutil.CreateStudio(t, db, "bravo", testutil.Featured(until))
	testutil.CreateStudio(t, db, "charlie")

	count, err := repo.CountFeatured(db, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountFeatured(db, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestEnforcementQueries(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewStudioRepository()
	now := time.Now().UTC()

	testutil.CreateStudio(t, db, "expired", testutil.MembershipExpires(now.Add(-time.Hour)))
	testutil.CreateStudio(t, db, "expiring", testutil.MembershipExpires(now.Add(3*24*time.Hour)))
	testutil.CreateStudio(t, db, "lapsedfeature", testutil.Featured(now.Add(-time.Minute)))

	expired, err := repo.FindExpiredMemberships(db, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "expired", expired[0].Username)

	reminders, err := repo.FindNeedingReminder(db, now, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "expiring", reminders[0].Username)

	lapsed, err := repo.FindExpiredFeatured(db, now)
	require.NoError(t, err)
	require.Len(t, lapsed, 1)
	assert.Equal(t, "lapsedfeature", lapsed[0].Username)
}

func TestPaymentCreateIsIdempotentOnSession(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewPaymentRepository()
	user := testutil.CreateUser(t, db, "payer@example.com", models.UserRoleStudioOwner, models.UserStatusPending)

	newPayment := func() *models.Payment {
		return &models.Payment{
			UserID:            user.ID,
			Provider:          models.PaymentProviderStripe,
			ProviderSessionID: "cs_test_1",
			ProviderPaymentID: "pi_1",
			Purpose:           models.PaymentPurposeMembership,
			Amount:            2500,
			Currency:          "gbp",
			Status:            models.PaymentStatusSucceeded,
		}
	}

	require.NoError(t, repo.Create(db, newPayment()))
	assert.ErrorIs(t, repo.Create(db, newPayment()), repositories.ErrDuplicate)

	n, err := repo.MarkRefunded(db, models.PaymentProviderStripe, "pi_1", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	payment, err := repo.FindBySessionID(db, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, payment.Status)

	rows, total, err := repo.FindWithFilter(db, repositories.PaymentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "payer@example.com", rows[0].UserEmail)
}

func TestSubscriptionUpsertKeepsOneRow(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewSubscriptionRepository()
	user := testutil.CreateUser(t, db, "sub@example.com", models.UserRoleStudioOwner, models.UserStatusActive)
	now := time.Now().UTC()

	for i := 1; i <= 2; i++ {
		require.NoError(t, repo.Upsert(db, &models.Subscription{
			UserID:             user.ID,
			Tier:               models.MembershipTierPremium,
			Provider:           models.PaymentProviderStripe,
			Status:             models.SubscriptionStatusActive,
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   now.AddDate(i, 0, 0),
		}))
	}

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	sub, err := repo.FindByUserID(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(2, 0, 0).Year(), sub.CurrentPeriodEnd.Year())

	require.NoError(t, repo.ExpireForUsers(db, []string{user.ID}))
	sub, err = repo.FindByUserID(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusExpired, sub.Status)
}

func TestUserDeleteCascades(t *testing.T) {
	db := testutil.OpenDB(t)
	users := repositories.NewUserRepository()
	owner, studio := testutil.CreateStudio(t, db, "doomed")

	require.NoError(t, db.Create(&models.StudioImage{StudioID: studio.ID, URL: "/u/1.jpg"}).Error)
	require.NoError(t, db.Create(&models.SupportTicket{UserID: owner.ID, Type: models.TicketTypeIssue, Subject: "s", Message: "m"}).Error)

	require.NoError(t, users.Delete(db, owner.ID))

	for _, m := range []interface{}{&models.User{}, &models.StudioProfile{}, &models.StudioImage{}, &models.SupportTicket{}} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}
	assert.ErrorIs(t, users.Delete(db, owner.ID), repositories.ErrUserNotFound)
}

func TestUsernameTakenChecksStudios(t *testing.T) {
	db := testutil.OpenDB(t)
	users := repositories.NewUserRepository()
	owner, _ := testutil.CreateStudio(t, db, "taken")

	taken, err := users.UsernameTaken(db, "taken", "someone-else")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = users.UsernameTaken(db, "taken", owner.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = users.UsernameTaken(db, "free", "")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestCampaignDeliveriesUpsert(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewCampaignRepository()

	campaign := &models.EmailCampaign{CreatedBy: "admin", Name: "n", Subject: "s", HTMLBody: "<p>x</p>",
		Audience: models.CampaignAudienceWaitlist, Status: models.CampaignStatusDraft}
	require.NoError(t, repo.Create(db, campaign))

	require.NoError(t, repo.SaveDelivery(db, &models.EmailDelivery{CampaignID: campaign.ID, Email: "a@x.com", Status: models.DeliveryStatusFailed, Error: "boom"}))
	require.NoError(t, repo.SaveDelivery(db, &models.EmailDelivery{CampaignID: campaign.ID, Email: "a@x.com", Status: models.DeliveryStatusSent}))
	require.NoError(t, repo.SaveDelivery(db, &models.EmailDelivery{CampaignID: campaign.ID, Email: "b@x.com", Status: models.DeliveryStatusFailed}))

	sent, err := repo.SentEmails(db, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a@x.com": true}, sent)

	counts, err := repo.CountDeliveries(db, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[string(models.DeliveryStatusSent)])
	assert.Equal(t, int64(1), counts[string(models.DeliveryStatusFailed)])
}

func TestClaimForSendingIsExclusive(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewCampaignRepository()

	campaign := &models.EmailCampaign{CreatedBy: "admin", Name: "n", Subject: "s", HTMLBody: "<p>x</p>",
		Audience: models.CampaignAudienceWaitlist, Status: models.CampaignStatusDraft}
	require.NoError(t, repo.Create(db, campaign))

	claimed, err := repo.ClaimForSending(db, campaign.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimForSending(db, campaign.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	stored, err := repo.FindByID(db, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusSending, stored.Status)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repositories.NewStudioRepository()

	_, booth := testutil.CreateStudio(t, db, "booth")
	require.NoError(t, db.Model(booth).Update("name", "Booth 100% Dry").Error)
	testutil.CreateStudio(t, db, "plain")

	for query, want := range map[string]int{"_": 0, "%": 1, "100%": 1, "studio": 1} {
		hits, err := repo.SearchCandidates(db, repositories.StudioSearchFilter{Query: query})
		require.NoError(t, err)
		assert.Len(t, hits, want, "query %q", query)
	}

	names, err := repo.SuggestNames(db, "_", 10)
	require.NoError(t, err)
	assert.Empty(t, names)

	users := repositories.NewUserRepository()
	found, total, err := users.FindWithFilter(db, repositories.UserFilter{Search: "_"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, found)
}
