package payments

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"studiofinder_backend/internal/config"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/pkg/apperrors"
)

// StripeGateway creates Checkout Sessions and verifies Stripe webhooks.
type StripeGateway struct {
	cfg config.StripeConfig
	api *client.API
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	g := &StripeGateway{cfg: cfg}
	if cfg.SecretKey != "" {
		g.api = &client.API{}
		g.api.Init(cfg.SecretKey, nil)
	}
	return g
}

func (g *StripeGateway) Provider() models.PaymentProvider { return models.PaymentProviderStripe }

func (g *StripeGateway) Enabled() bool { return g.api != nil }

func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if !g.Enabled() {
		return nil, apperrors.ErrPaymentProviderUnavailable
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
		LineItems:         []*stripe.CheckoutSessionLineItemParams{g.lineItem(req.Purpose)},
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	for k, v := range metadataFor(req) {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, apperrors.ExternalServiceError(err, "payments", "Failed to create Stripe checkout session")
	}
	return &CheckoutSession{Provider: models.PaymentProviderStripe, ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) lineItem(purpose models.PaymentPurpose) *stripe.CheckoutSessionLineItemParams {
	priceID, amount, name := g.cfg.MembershipPriceID, g.cfg.MembershipAmount, "Studio membership (1 year)"
	if purpose == models.PaymentPurposeFeatured {
		priceID, amount, name = g.cfg.FeaturedPriceID, g.cfg.FeaturedAmount, "Featured listing (30 days)"
	}
	if priceID != "" {
		return &stripe.CheckoutSessionLineItemParams{Price: stripe.String(priceID), Quantity: stripe.Int64(1)}
	}
	return &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(1),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(g.cfg.Currency),
			UnitAmount: stripe.Int64(amount),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
	}
}

// ParseWebhook verifies the Stripe-Signature header and normalises the
// events the membership flow reacts to.
func (g *StripeGateway) ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookEvent, error) {
	if g.cfg.WebhookSecret == "" {
		return nil, apperrors.ErrPaymentProviderUnavailable
	}

	event, err := webhook.ConstructEventWithOptions(payload, headers.Get("Stripe-Signature"), g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, apperrors.ErrInvalidWebhookSignature.WithError(err)
	}

	out := &WebhookEvent{Provider: models.PaymentProviderStripe, Type: string(event.Type), Kind: EventIgnored}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded", "checkout.session.async_payment_failed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, apperrors.NewBadRequestError("Malformed checkout session payload").WithError(err)
		}
		out.SessionID = sess.ID
		out.Metadata = sess.Metadata
		out.Amount = sess.AmountTotal
		out.Currency = string(sess.Currency)
		if sess.PaymentIntent != nil {
			out.PaymentID = sess.PaymentIntent.ID
		}
		switch {
		case out.Type == "checkout.session.async_payment_failed":
			out.Kind = EventPaymentFailed
		case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
			out.Kind = EventPaymentSucceeded
		}
	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, apperrors.NewBadRequestError("Malformed charge payload").WithError(err)
		}
		if charge.PaymentIntent == nil {
			return out, nil
		}
		out.Kind = EventRefunded
		out.PaymentID = charge.PaymentIntent.ID
		out.Amount = charge.AmountRefunded
		out.Currency = string(charge.Currency)
	}
	return out, nil
}
