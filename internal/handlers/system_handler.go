package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/metrics"
	"studiofinder_backend/internal/services"
)

// SystemHandler serves health, metrics and the cron trigger.
type SystemHandler struct {
	*BaseHandler
	sqlDB              *sql.DB
	enforcementService services.EnforcementService
	now                func() time.Time
}

func NewSystemHandler(base *BaseHandler, sqlDB *sql.DB, enforcementService services.EnforcementService) *SystemHandler {
	return &SystemHandler{
		BaseHandler:        base,
		sqlDB:              sqlDB,
		enforcementService: enforcementService,
		now:                time.Now,
	}
}

// RegisterRoutes mounts /healthz and /metrics on the engine root and the cron
// trigger under /api.
func (h *SystemHandler) RegisterRoutes(root gin.IRoutes, api *gin.RouterGroup) {
	root.GET("/healthz", h.Health)
	root.GET("/metrics", gin.WrapH(metrics.Handler()))

	cron := api.Group("/cron", h.guards.Cron)
	{
		cron.POST("/enforce-subscriptions", h.EnforceSubscriptions)
		cron.GET("/enforce-subscriptions", h.EnforceSubscriptions)
	}
}

func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.sqlDB.PingContext(ctx); err != nil {
		logger.CtxWithError(ctx, "health check failed", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// EnforceSubscriptions runs one enforcement pass; ?dry_run=true only reports.
func (h *SystemHandler) EnforceSubscriptions(c *gin.Context) {
	dryRun, _ := strconv.ParseBool(c.Query("dry_run"))

	report, err := h.enforcementService.EnforceSubscriptions(c.Request.Context(), h.GetDB(c), h.now(), dryRun)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
