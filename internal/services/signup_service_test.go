package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/internal/testutil"
	"studiofinder_backend/pkg/apperrors"
)

func TestCheckUsername(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateStudio(t, env.db, "taken")
	user := testutil.CreateUser(t, env.db, "new@example.com", models.UserRoleStudioOwner, models.UserStatusPending)

	cases := []struct {
		input     string
		available bool
	}{
		{"Fresh-Name", true},
		{"taken", false},
		{"admin", false},
		{"ab", false},
		{"_leading", false},
		{"has space", false},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			res, err := env.svc.SignupService.CheckUsername(env.db, user.ID, tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.available, res.Available)
			if !tc.available {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestReserveUsername(t *testing.T) {
	env := newTestEnv(t)
	first := testutil.CreateUser(t, env.db, "first@example.com", models.UserRoleStudioOwner, models.UserStatusPending)
	second := testutil.CreateUser(t, env.db, "second@example.com", models.UserRoleStudioOwner, models.UserStatusPending)

	user, err := env.svc.SignupService.ReserveUsername(env.db, first.ID, " My-Studio ")
	require.NoError(t, err)
	assert.Equal(t, "my-studio", user.UsernameValue())

	// Changing your own reservation before paying is allowed.
	_, err = env.svc.SignupService.ReserveUsername(env.db, first.ID, "my-studio")
	require.NoError(t, err)

	_, err = env.svc.SignupService.ReserveUsername(env.db, second.ID, "my-studio")
	assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)

	_, err = env.svc.SignupService.ReserveUsername(env.db, second.ID, "support")
	assert.ErrorIs(t, err, apperrors.ErrInvalidUsername)
}

func TestReserveUsernameLockedOnceStudioExists(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := testutil.CreateStudio(t, env.db, "livestudio")

	_, err := env.svc.SignupService.ReserveUsername(env.db, owner.ID, "another-name")
	assert.ErrorIs(t, err, apperrors.ErrUsernameLocked)
}

func TestStartCheckout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "buyer@example.com", models.UserRoleStudioOwner, models.UserStatusPending)

	_, err := env.svc.SignupService.StartCheckout(ctx, env.db, user.ID, &dto.CheckoutRequest{Purpose: "membership"})
	assert.ErrorIs(t, err, apperrors.ErrUsernameRequired)

	_, err = env.svc.SignupService.ReserveUsername(env.db, user.ID, "buyer")
	require.NoError(t, err)

	session, err := env.svc.SignupService.StartCheckout(ctx, env.db, user.ID, &dto.CheckoutRequest{Purpose: "membership"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentProviderStripe, session.Provider)
	assert.NotEmpty(t, session.URL)

	require.Len(t, env.stripe.Checkouts, 1)
	req := env.stripe.Checkouts[0]
	assert.Equal(t, user.ID, req.UserID)
	assert.Equal(t, "buyer", req.Username)
	assert.Equal(t, models.PaymentPurposeMembership, req.Purpose)
	assert.Contains(t, req.SuccessURL, "https://studios.example.com/signup/success")

	_, err = env.svc.SignupService.StartCheckout(ctx, env.db, user.ID, &dto.CheckoutRequest{Purpose: "featured"})
	assert.ErrorIs(t, err, apperrors.ErrMembershipRequired)

	env.paypal.Disabled = true
	_, err = env.svc.SignupService.StartCheckout(ctx, env.db, user.ID, &dto.CheckoutRequest{Purpose: "membership", Provider: "paypal"})
	assert.ErrorIs(t, err, apperrors.ErrPaymentProviderUnavailable)
}

func TestStartFeaturedCheckoutForActiveStudio(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := testutil.CreateStudio(t, env.db, "activestudio")

	session, err := env.svc.SignupService.StartCheckout(context.Background(), env.db, owner.ID,
		&dto.CheckoutRequest{Purpose: "FEATURED", Provider: "paypal"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentProviderPayPal, session.Provider)
	require.Len(t, env.paypal.Checkouts, 1)
	assert.Equal(t, models.PaymentPurposeFeatured, env.paypal.Checkouts[0].Purpose)
}

func TestCapturePayPalOrder(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.svc.SignupService.CapturePayPalOrder(context.Background(), "ORDER-1"))
	assert.Equal(t, []string{"ORDER-1"}, env.paypal.Captured)
}

func TestMembershipStatus(t *testing.T) {
	env := newTestEnv(t)
	owner, studio := testutil.CreateStudio(t, env.db, "statusstudio")

	status, err := env.svc.SignupService.MembershipStatus(env.db, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, status.UserStatus)
	assert.Equal(t, models.MembershipTierPremium, status.Tier)
	assert.Equal(t, "statusstudio", status.Username)
	assert.Equal(t, models.StudioStatusActive, status.StudioStatus)
	require.NotNil(t, status.MembershipExpiresAt)
	assert.WithinDuration(t, *studio.MembershipExpiresAt, *status.MembershipExpiresAt, time.Second)
}
