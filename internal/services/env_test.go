package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studiofinder_backend/internal/algorithms"
	"studiofinder_backend/internal/auth"
	"studiofinder_backend/internal/cache"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/services"
	"studiofinder_backend/internal/services/payments"
	"studiofinder_backend/internal/testutil"
	"studiofinder_backend/pkg/apperrors"
)

type testEnv struct {
	db       *gorm.DB
	emails   *testutil.RecordingEmailProvider
	stripe   *testutil.FakeGateway
	paypal   *testutil.FakeGateway
	geocoder *testutil.FakeGeocoder
	storage  *testutil.MemoryStorage
	tokens   *auth.TokenManager
	svc      *services.ServiceContainer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		db:     testutil.OpenDB(t),
		emails: testutil.NewRecordingEmailProvider(),
		stripe: testutil.NewFakeGateway(models.PaymentProviderStripe),
		paypal: testutil.NewFakeGateway(models.PaymentProviderPayPal),
		geocoder: testutil.NewFakeGeocoder(map[string]algorithms.Point{
			"London":                   {Lat: 51.5074, Lng: -0.1278},
			"Leeds":                    {Lat: 53.8008, Lng: -1.5491},
			"1 Abbey Road, London, UK": {Lat: 51.5320, Lng: -0.1778},
		}),
		storage: testutil.NewMemoryStorage(),
		tokens:  auth.NewTokenManager("test-secret", time.Hour),
	}
	env.svc = services.NewServiceContainer(services.Dependencies{
		Tokens:   env.tokens,
		Email:    env.emails,
		Storage:  env.storage,
		Geocoder: env.geocoder,
		Cache:    cache.NewMemoryCache(time.Minute),
		Gateways: []payments.Gateway{env.stripe, env.paypal},
		BaseURL:  "https://studios.example.com",
	})
	return env
}

func (e *testEnv) reloadUser(t *testing.T, id string) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, e.db.First(&user, "id = ?", id).Error)
	return &user
}

func (e *testEnv) reloadStudio(t *testing.T, id string) *models.StudioProfile {
	t.Helper()
	var studio models.StudioProfile
	require.NoError(t, e.db.First(&studio, "id = ?", id).Error)
	return &studio
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}
