package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/plutov/paypal/v4"

	"studiofinder_backend/internal/config"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/pkg/apperrors"
)

// PayPalGateway creates CAPTURE orders and verifies PayPal webhooks through
// the verify-webhook-signature API.
type PayPalGateway struct {
	cfg    config.PayPalConfig
	client *paypal.Client
}

func NewPayPalGateway(cfg config.PayPalConfig) (*PayPalGateway, error) {
	g := &PayPalGateway{cfg: cfg}
	if cfg.ClientID == "" || cfg.Secret == "" {
		return g, nil
	}
	base := paypal.APIBaseLive
	if cfg.Sandbox {
		base = paypal.APIBaseSandBox
	}
	c, err := paypal.NewClient(cfg.ClientID, cfg.Secret, base)
	if err != nil {
		return nil, err
	}
	g.client = c
	return g, nil
}

func (g *PayPalGateway) Provider() models.PaymentProvider { return models.PaymentProviderPayPal }

func (g *PayPalGateway) Enabled() bool { return g.client != nil }

func (g *PayPalGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if !g.Enabled() {
		return nil, apperrors.ErrPaymentProviderUnavailable
	}

	amount, description := g.cfg.MembershipAmount, "Studio membership (1 year)"
	if req.Purpose == models.PaymentPurposeFeatured {
		amount, description = g.cfg.FeaturedAmount, "Featured listing (30 days)"
	}

	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture,
		[]paypal.PurchaseUnitRequest{{
			ReferenceID: req.UserID,
			CustomID:    encodeCustomID(req),
			Description: description,
			Amount:      &paypal.PurchaseUnitAmount{Currency: g.cfg.Currency, Value: amount},
		}},
		nil,
		&paypal.ApplicationContext{
			BrandName:  "Voiceover Studio Finder",
			UserAction: "PAY_NOW",
			ReturnURL:  req.SuccessURL,
			CancelURL:  req.CancelURL,
		},
	)
	if err != nil {
		return nil, apperrors.ExternalServiceError(err, "payments", "Failed to create PayPal order")
	}

	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return &CheckoutSession{Provider: models.PaymentProviderPayPal, ID: order.ID, URL: link.Href}, nil
		}
	}
	return nil, apperrors.ExternalServiceError(nil, "payments", "PayPal order has no approval link")
}

// CaptureOrder captures an approved order. The payment itself is recorded
// when the PAYMENT.CAPTURE.COMPLETED webhook arrives.
func (g *PayPalGateway) CaptureOrder(ctx context.Context, orderID string) error {
	if !g.Enabled() {
		return apperrors.ErrPaymentProviderUnavailable
	}
	if _, err := g.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{}); err != nil {
		return apperrors.ExternalServiceError(err, "payments", "Failed to capture PayPal order")
	}
	return nil
}

func (g *PayPalGateway) ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookEvent, error) {
	if !g.Enabled() || g.cfg.WebhookID == "" {
		return nil, apperrors.ErrPaymentProviderUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	req.Header = headers.Clone()

	resp, err := g.client.VerifyWebhookSignature(ctx, req, g.cfg.WebhookID)
	if err != nil {
		return nil, apperrors.ExternalServiceError(err, "payments", "PayPal signature verification failed")
	}
	if resp.VerificationStatus != "SUCCESS" {
		return nil, apperrors.ErrInvalidWebhookSignature
	}

	return parsePayPalEvent(payload)
}

type paypalWebhook struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID       string `json:"id"`
		CustomID string `json:"custom_id"`
		Amount   struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	} `json:"resource"`
}

// parsePayPalEvent decodes an already verified webhook body.
func parsePayPalEvent(payload []byte) (*WebhookEvent, error) {
	var hook paypalWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, apperrors.NewBadRequestError("Malformed PayPal webhook payload").WithError(err)
	}

	out := &WebhookEvent{
		Provider: models.PaymentProviderPayPal,
		Type:     hook.EventType,
		Kind:     EventIgnored,
		Currency: strings.ToLower(hook.Resource.Amount.CurrencyCode),
		Amount:   parseMinorUnits(hook.Resource.Amount.Value),
	}

	switch hook.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		out.Kind = EventPaymentSucceeded
		out.SessionID = hook.Resource.ID
		out.PaymentID = hook.Resource.ID
		out.Metadata = decodeCustomID(hook.Resource.CustomID)
	case "PAYMENT.CAPTURE.DENIED":
		out.Kind = EventPaymentFailed
		out.SessionID = hook.Resource.ID
		out.PaymentID = hook.Resource.ID
		out.Metadata = decodeCustomID(hook.Resource.CustomID)
	case "PAYMENT.CAPTURE.REFUNDED":
		// The resource is the refund; its "up" link points at the capture.
		out.Kind = EventRefunded
		for _, link := range hook.Resource.Links {
			if link.Rel == "up" {
				out.PaymentID = path.Base(link.Href)
			}
		}
		if out.PaymentID == "" {
			out.Kind = EventIgnored
		}
	}
	return out, nil
}

// parseMinorUnits converts a decimal amount like "25.00" to 2500.
func parseMinorUnits(value string) int64 {
	whole, frac, _ := strings.Cut(strings.TrimSpace(value), ".")
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0
	}
	return w*100 + f
}
