package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studiofinder_backend/internal/services"
	"studiofinder_backend/internal/services/dto"
)

// CommunityHandler serves the waitlist and support ticket endpoints.
type CommunityHandler struct {
	*BaseHandler
	waitlistService services.WaitlistService
	supportService  services.SupportService
}

func NewCommunityHandler(base *BaseHandler, waitlistService services.WaitlistService, supportService services.SupportService) *CommunityHandler {
	return &CommunityHandler{
		BaseHandler:     base,
		waitlistService: waitlistService,
		supportService:  supportService,
	}
}

func (h *CommunityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/waitlist", h.guards.RateLimit, h.JoinWaitlist)

	support := rg.Group("/support", h.guards.Auth)
	{
		support.POST("/tickets", h.CreateTicket)
		support.GET("/tickets", h.ListMyTickets)
	}
}

func (h *CommunityHandler) JoinWaitlist(c *gin.Context) {
	var req dto.JoinWaitlistRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.waitlistService.Join(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if response.AlreadyJoined {
		c.JSON(http.StatusOK, response)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *CommunityHandler) CreateTicket(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateTicketRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	ticket, err := h.supportService.CreateTicket(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *CommunityHandler) ListMyTickets(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	tickets, err := h.supportService.ListMine(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}
