package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/services"
	"studiofinder_backend/pkg/apperrors"
)

// maxWebhookBody caps provider payloads; Stripe documents events well under this.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewWebhookHandler(base *BaseHandler, paymentService services.PaymentService) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/stripe", h.handle(models.PaymentProviderStripe))
		webhooks.POST("/paypal", h.handle(models.PaymentProviderPayPal))
	}
}

// handle reads the raw body untouched; signature checks run over the exact bytes.
func (h *WebhookHandler) handle(provider models.PaymentProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				apperrors.HandleError(c, apperrors.ErrPayloadTooLarge)
				return
			}
			apperrors.HandleError(c, apperrors.NewBadRequestError("Failed to read webhook body"))
			return
		}

		result, err := h.paymentService.HandleWebhook(c.Request.Context(), h.GetDB(c), provider, payload, c.Request.Header)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
