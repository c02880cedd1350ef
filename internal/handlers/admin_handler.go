package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/services"
	"studiofinder_backend/internal/services/dto"
)

type AdminHandler struct {
	*BaseHandler
	adminService services.AdminService
}

func NewAdminHandler(base *BaseHandler, adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  base,
		adminService: adminService,
	}
}

// RegisterRoutes регистрирует /admin (только ADMIN)
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", h.guards.Auth, h.guards.Admin)
	{
		admin.GET("/stats", h.Stats)

		studios := admin.Group("/studios")
		{
			studios.GET("", h.ListStudios)
			studios.GET("/:studioId", h.GetStudio)
			studios.PATCH("/:studioId/status", h.SetStudioStatus)
			studios.PATCH("/:studioId/visibility", h.SetStudioVisibility)
			studios.PATCH("/:studioId/verified", h.SetStudioVerified)
			studios.PATCH("/:studioId/featured", h.SetStudioFeatured)
			studios.DELETE("/:studioId", h.DeleteStudio)
		}

		users := admin.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.GET("/:userId", h.GetUser)
			users.PATCH("/:userId/role", h.SetUserRole)
			users.PATCH("/:userId/status", h.SetUserStatus)
			users.DELETE("/:userId", h.DeleteUser)

			users.GET("/:userId/notes", h.ListNotes)
			users.POST("/:userId/notes", h.CreateNote)
			users.DELETE("/:userId/notes/:noteId", h.DeleteNote)
		}

		admin.GET("/payments", h.ListPayments)
		admin.GET("/subscriptions", h.SubscriptionOverview)

		admin.GET("/waitlist", h.ListWaitlist)
		admin.GET("/waitlist/export", h.ExportWaitlist)

		admin.GET("/support", h.ListTickets)
		admin.PATCH("/support/:ticketId", h.UpdateTicket)
	}
}

// --- Studios ---

func (h *AdminHandler) ListStudios(c *gin.Context) {
	var q dto.AdminStudioQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	result, err := h.adminService.ListStudios(h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) GetStudio(c *gin.Context) {
	studioID, ok := RequiredParam(c, "studioId")
	if !ok {
		return
	}
	studio, err := h.adminService.GetStudio(h.GetDB(c), studioID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, studio)
}

func (h *AdminHandler) SetStudioStatus(c *gin.Context) {
	studioID, ok := RequiredParam(c, "studioId")
	if !ok {
		return
	}
	var req dto.SetStudioStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	studio, err := h.adminService.SetStudioStatus(h.GetDB(c), studioID, req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, studio)
}

func (h *AdminHandler) SetStudioVisibility(c *gin.Context) {
	h.setStudioFlag(c, h.adminService.SetStudioVisibility)
}

func (h *AdminHandler) SetStudioVerified(c *gin.Context) {
	h.setStudioFlag(c, h.adminService.SetStudioVerified)
}

func (h *AdminHandler) SetStudioFeatured(c *gin.Context) {
	h.setStudioFlag(c, h.adminService.SetStudioFeatured)
}

func (h *AdminHandler) setStudioFlag(c *gin.Context, apply func(db *gorm.DB, studioID string, value bool) (*models.StudioProfile, error)) {
	studioID, ok := RequiredParam(c, "studioId")
	if !ok {
		return
	}
	var req dto.SetFlagRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	studio, err := apply(h.GetDB(c), studioID, *req.Value)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, studio)
}

func (h *AdminHandler) DeleteStudio(c *gin.Context) {
	studioID, ok := RequiredParam(c, "studioId")
	if !ok {
		return
	}
	if err := h.adminService.DeleteStudio(c.Request.Context(), h.GetDB(c), studioID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Users ---

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q dto.AdminUserQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	result, err := h.adminService.ListUsers(h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, ok := RequiredParam(c, "userId")
	if !ok {
		return
	}
	user, err := h.adminService.GetUser(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) SetUserRole(c *gin.Context) {
	actorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	userID, ok := RequiredParam(c, "userId")
	if !ok {
		return
	}
	var req dto.SetUserRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	user, err := h.adminService.SetUserRole(h.GetDB(c), actorID, userID, req.Role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	actorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	userID, ok := RequiredParam(c, "userId")
	if !ok {
		return
	}
	var req dto.SetUserStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	user, err := h.adminService.SetUserStatus(h.GetDB(c), actorID, userID, req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	userID, ok := RequiredParam(c, "userId")
	if !ok {
		return
	}
	if err := h.adminService.DeleteUser(c.Request.Context(), h.GetDB(c), actorID, userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Notes ---

func (h *AdminHandler) ListNotes(c *gin.Context) {
	userID, ok := RequiredParam(c, "userId")
	if !ok {
		return
	}
	notes, err := h.adminService.ListNotes(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (h *AdminHandler) CreateNote(c *gin.Context) {
	authorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	userID, ok := RequiredParam(c, "userId")
	if !ok {
		return
	}
	var req dto.CreateNoteRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	note, err := h.adminService.CreateNote(h.GetDB(c), authorID, userID, req.Content)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *AdminHandler) DeleteNote(c *gin.Context) {
	userID, ok := RequiredParam(c, "userId")
	if !ok {
		return
	}
	noteID, ok := RequiredParam(c, "noteId")
	if !ok {
		return
	}
	if err := h.adminService.DeleteNote(h.GetDB(c), userID, noteID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Billing ---

func (h *AdminHandler) ListPayments(c *gin.Context) {
	var q dto.PaymentQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	result, err := h.adminService.ListPayments(h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) SubscriptionOverview(c *gin.Context) {
	overview, err := h.adminService.SubscriptionOverview(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// --- Waitlist ---

func (h *AdminHandler) ListWaitlist(c *gin.Context) {
	var q dto.PageQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	result, err := h.adminService.ListWaitlist(h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportWaitlist отдаёт CSV как вложение.
func (h *AdminHandler) ExportWaitlist(c *gin.Context) {
	filename := fmt.Sprintf("waitlist-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	// Headers are already out; a mid-stream failure can only be logged.
	if err := h.adminService.ExportWaitlistCSV(h.GetDB(c), c.Writer); err != nil {
		logger.CtxWithError(c.Request.Context(), "waitlist export failed", err)
		_ = c.Error(err)
	}
}

// --- Support ---

func (h *AdminHandler) ListTickets(c *gin.Context) {
	var q dto.TicketQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	result, err := h.adminService.ListTickets(h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) UpdateTicket(c *gin.Context) {
	ticketID, ok := RequiredParam(c, "ticketId")
	if !ok {
		return
	}
	var req dto.UpdateTicketRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	ticket, err := h.adminService.UpdateTicket(h.GetDB(c), ticketID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
