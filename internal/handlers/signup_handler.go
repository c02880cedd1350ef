package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studiofinder_backend/internal/services"
	"studiofinder_backend/internal/services/dto"
)

type SignupHandler struct {
	*BaseHandler
	signupService services.SignupService
}

func NewSignupHandler(base *BaseHandler, signupService services.SignupService) *SignupHandler {
	return &SignupHandler{
		BaseHandler:   base,
		signupService: signupService,
	}
}

func (h *SignupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	signup := rg.Group("/signup", h.guards.Auth)
	{
		signup.GET("/username", h.CheckUsername)
		signup.POST("/username", h.ReserveUsername)
		signup.POST("/checkout", h.StartCheckout)
		signup.POST("/paypal/capture", h.CapturePayPalOrder)
		signup.GET("/status", h.MembershipStatus)
	}
}

// CheckUsername handles GET /signup/username?username=...
func (h *SignupHandler) CheckUsername(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	result, err := h.signupService.CheckUsername(h.GetDB(c), userID, c.Query("username"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SignupHandler) ReserveUsername(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ReserveUsernameRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.signupService.ReserveUsername(h.GetDB(c), userID, req.Username)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *SignupHandler) StartCheckout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	session, err := h.signupService.StartCheckout(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SignupHandler) CapturePayPalOrder(c *gin.Context) {
	var req dto.CapturePayPalRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.signupService.CapturePayPalOrder(c.Request.Context(), req.OrderID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Payment captured; your membership activates shortly"})
}

func (h *SignupHandler) MembershipStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	status, err := h.signupService.MembershipStatus(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
