package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/internal/testutil"
)

type mockEnforcementService struct {
	mock.Mock
}

func (m *mockEnforcementService) EnforceSubscriptions(ctx context.Context, db *gorm.DB, now time.Time, dryRun bool) (*dto.EnforcementReport, error) {
	args := m.Called(now, dryRun)
	report, _ := args.Get(0).(*dto.EnforcementReport)
	return report, args.Error(1)
}

func TestStartWithoutScheduleReturnsImmediately(t *testing.T) {
	svc := &mockEnforcementService{}
	w := NewEnforcementWorker(testutil.OpenDB(t), svc, "")

	require.NoError(t, w.Start(context.Background()))
	svc.AssertNotCalled(t, "EnforceSubscriptions", mock.Anything, mock.Anything)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	w := NewEnforcementWorker(testutil.OpenDB(t), &mockEnforcementService{}, "every tuesday")
	require.Error(t, w.Start(context.Background()))
}

func TestStartStopsOnCancel(t *testing.T) {
	w := NewEnforcementWorker(testutil.OpenDB(t), &mockEnforcementService{}, "@daily")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestRunOnceIsNotDryRun(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC)
	svc := &mockEnforcementService{}
	svc.On("EnforceSubscriptions", fixed, false).Return(&dto.EnforcementReport{ExpiredMemberships: 2}, nil).Once()

	w := NewEnforcementWorker(testutil.OpenDB(t), svc, "@hourly")
	w.now = func() time.Time { return fixed }
	w.RunOnce(context.Background())

	svc.AssertExpectations(t)
	assert.Len(t, svc.Calls, 1)
}
