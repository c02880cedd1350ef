package payments

import (
	"context"
	"net/http"

	"studiofinder_backend/internal/models"
)

// CheckoutRequest describes one hosted checkout for a user.
type CheckoutRequest struct {
	UserID     string
	Username   string
	Email      string
	Purpose    models.PaymentPurpose
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is where the client is redirected to pay.
type CheckoutSession struct {
	Provider models.PaymentProvider `json:"provider"`
	ID       string                 `json:"id"`
	URL      string                 `json:"url"`
}

type EventKind string

const (
	EventPaymentSucceeded EventKind = "payment_succeeded"
	EventPaymentFailed    EventKind = "payment_failed"
	EventRefunded         EventKind = "refunded"
	EventIgnored          EventKind = "ignored"
)

// WebhookEvent is a verified provider callback reduced to what the
// membership logic needs. SessionID is the idempotency key.
type WebhookEvent struct {
	Provider  models.PaymentProvider
	Type      string
	Kind      EventKind
	SessionID string
	PaymentID string
	Metadata  map[string]string
	Amount    int64
	Currency  string
}

// Gateway is a payment provider that can start checkouts and verify
// webhooks.
type Gateway interface {
	Provider() models.PaymentProvider
	Enabled() bool
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookEvent, error)
}

// OrderCapturer is implemented by providers whose orders must be captured
// after buyer approval.
type OrderCapturer interface {
	CaptureOrder(ctx context.Context, orderID string) error
}
