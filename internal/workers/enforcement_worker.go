package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/services"
)

// EnforcementWorker runs subscription enforcement on a cron schedule.
type EnforcementWorker struct {
	db       *gorm.DB
	service  services.EnforcementService
	schedule string
	timeout  time.Duration
	now      func() time.Time
}

func NewEnforcementWorker(db *gorm.DB, service services.EnforcementService, schedule string) *EnforcementWorker {
	return &EnforcementWorker{
		db:       db,
		service:  service,
		schedule: schedule,
		timeout:  5 * time.Minute,
		now:      time.Now,
	}
}

// Start регистрирует задачу и блокируется до отмены ctx.
// Пустое расписание отключает воркер.
func (w *EnforcementWorker) Start(ctx context.Context) error {
	if w.schedule == "" {
		logger.Info("Enforcement worker disabled: no schedule configured")
		return nil
	}

	c := cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", w.schedule, err)
	}

	c.Start()
	logger.Info("Enforcement worker started", "schedule", w.schedule)

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	logger.Info("Enforcement worker stopped")
	return nil
}

// RunOnce выполняет один проход; ошибки только логируются.
func (w *EnforcementWorker) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	report, err := w.service.EnforceSubscriptions(runCtx, w.db.WithContext(runCtx), w.now(), false)
	if err != nil {
		logger.Error("Scheduled enforcement failed", "error", err)
		return
	}
	logger.Info("Scheduled enforcement finished",
		"expired_memberships", report.ExpiredMemberships,
		"expired_featured", report.ExpiredFeatured,
		"reminders_sent", report.RemindersSent)
}
