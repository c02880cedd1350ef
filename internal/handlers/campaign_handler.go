package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studiofinder_backend/internal/services"
	"studiofinder_backend/internal/services/dto"
)

type CampaignHandler struct {
	*BaseHandler
	campaignService services.CampaignService
}

func NewCampaignHandler(base *BaseHandler, campaignService services.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		BaseHandler:     base,
		campaignService: campaignService,
	}
}

func (h *CampaignHandler) RegisterRoutes(rg *gin.RouterGroup) {
	campaigns := rg.Group("/admin/campaigns", h.guards.Auth, h.guards.Admin)
	{
		campaigns.GET("", h.List)
		campaigns.POST("", h.Create)
		campaigns.GET("/:campaignId", h.Get)
		campaigns.PUT("/:campaignId", h.Update)
		campaigns.DELETE("/:campaignId", h.Delete)
		campaigns.GET("/:campaignId/preview", h.Preview)
		campaigns.POST("/:campaignId/send", h.Send)
		campaigns.GET("/:campaignId/deliveries", h.Deliveries)
	}
}

func (h *CampaignHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	result, err := h.campaignService.List(h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CampaignHandler) Create(c *gin.Context) {
	authorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CampaignRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	campaign, err := h.campaignService.Create(h.GetDB(c), authorID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (h *CampaignHandler) Get(c *gin.Context) {
	campaignID, ok := RequiredParam(c, "campaignId")
	if !ok {
		return
	}
	campaign, err := h.campaignService.Get(h.GetDB(c), campaignID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (h *CampaignHandler) Update(c *gin.Context) {
	campaignID, ok := RequiredParam(c, "campaignId")
	if !ok {
		return
	}
	var req dto.CampaignRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	campaign, err := h.campaignService.Update(h.GetDB(c), campaignID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (h *CampaignHandler) Delete(c *gin.Context) {
	campaignID, ok := RequiredParam(c, "campaignId")
	if !ok {
		return
	}
	if err := h.campaignService.Delete(h.GetDB(c), campaignID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CampaignHandler) Preview(c *gin.Context) {
	campaignID, ok := RequiredParam(c, "campaignId")
	if !ok {
		return
	}
	preview, err := h.campaignService.Preview(h.GetDB(c), campaignID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Send runs synchronously; the request stays open until every recipient is attempted.
func (h *CampaignHandler) Send(c *gin.Context) {
	campaignID, ok := RequiredParam(c, "campaignId")
	if !ok {
		return
	}
	result, err := h.campaignService.Send(c.Request.Context(), h.GetDB(c), campaignID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CampaignHandler) Deliveries(c *gin.Context) {
	campaignID, ok := RequiredParam(c, "campaignId")
	if !ok {
		return
	}
	var q dto.DeliveryQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	result, err := h.campaignService.Deliveries(h.GetDB(c), campaignID, &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
