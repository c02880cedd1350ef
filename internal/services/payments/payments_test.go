package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiofinder_backend/internal/config"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/pkg/apperrors"
)

const whsec = "whsec_test_secret"

func signStripe(payload []byte, secret string, ts time.Time) http.Header {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	h := http.Header{}
	h.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil))))
	return h
}

func TestValidateCheckoutMetadata(t *testing.T) {
	meta, err := ValidateCheckoutMetadata(map[string]string{"user_id": "u1", "purpose": "Membership", "username": "booth"})
	require.NoError(t, err)
	assert.Equal(t, "u1", meta.UserID)
	assert.Equal(t, models.PaymentPurposeMembership, meta.Purpose)
	assert.Equal(t, "booth", meta.Username)

	meta, err = ValidateCheckoutMetadata(map[string]string{"user_id": "u1", "purpose": "FEATURED"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPurposeFeatured, meta.Purpose)

	_, err = ValidateCheckoutMetadata(map[string]string{"purpose": "membership"})
	require.ErrorIs(t, err, apperrors.ErrInvalidPaymentMetadata)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, map[string]string{"user_id": "missing"}, appErr.Details)

	_, err = ValidateCheckoutMetadata(map[string]string{"user_id": "u1", "purpose": "donation"})
	require.ErrorIs(t, err, apperrors.ErrInvalidPaymentMetadata)

	_, err = ValidateCheckoutMetadata(nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentMetadata)
}

func TestStripeParseCompletedSession(t *testing.T) {
	g := NewStripeGateway(config.StripeConfig{WebhookSecret: whsec})
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_123",
			"object": "checkout.session",
			"payment_status": "paid",
			"amount_total": 2500,
			"currency": "gbp",
			"payment_intent": "pi_123",
			"metadata": {"user_id": "u1", "purpose": "membership"}
		}}
	}`)

	ev, err := g.ParseWebhook(context.Background(), payload, signStripe(payload, whsec, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, ev.Kind)
	assert.Equal(t, "cs_test_123", ev.SessionID)
	assert.Equal(t, "pi_123", ev.PaymentID)
	assert.Equal(t, int64(2500), ev.Amount)
	assert.Equal(t, "gbp", ev.Currency)
	assert.Equal(t, "u1", ev.Metadata["user_id"])
}

func TestStripeParseUnpaidSessionIsIgnored(t *testing.T) {
	g := NewStripeGateway(config.StripeConfig{WebhookSecret: whsec})
	payload := []byte(`{"id":"evt_2","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_2","object":"checkout.session","payment_status":"unpaid"}}}`)

	ev, err := g.ParseWebhook(context.Background(), payload, signStripe(payload, whsec, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, ev.Kind)
}

func TestStripeParseRefund(t *testing.T) {
	g := NewStripeGateway(config.StripeConfig{WebhookSecret: whsec})
	payload := []byte(`{"id":"evt_3","object":"event","type":"charge.refunded",
		"data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_123","amount_refunded":2500,"currency":"gbp"}}}`)

	ev, err := g.ParseWebhook(context.Background(), payload, signStripe(payload, whsec, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventRefunded, ev.Kind)
	assert.Equal(t, "pi_123", ev.PaymentID)
}

func TestStripeRejectsBadSignature(t *testing.T) {
	g := NewStripeGateway(config.StripeConfig{WebhookSecret: whsec})
	payload := []byte(`{"id":"evt_4","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)

	_, err := g.ParseWebhook(context.Background(), payload, signStripe(payload, "whsec_other", time.Now()))
	assert.ErrorIs(t, err, apperrors.ErrInvalidWebhookSignature)

	_, err = g.ParseWebhook(context.Background(), payload, http.Header{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidWebhookSignature)

	stale := signStripe(payload, whsec, time.Now().Add(-time.Hour))
	_, err = g.ParseWebhook(context.Background(), payload, stale)
	assert.ErrorIs(t, err, apperrors.ErrInvalidWebhookSignature)
}

func TestDisabledGateways(t *testing.T) {
	s := NewStripeGateway(config.StripeConfig{})
	assert.False(t, s.Enabled())
	_, err := s.CreateCheckout(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPaymentProviderUnavailable)
	_, err = s.ParseWebhook(context.Background(), []byte("{}"), http.Header{})
	assert.ErrorIs(t, err, apperrors.ErrPaymentProviderUnavailable)

	p, err := NewPayPalGateway(config.PayPalConfig{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.ErrorIs(t, p.CaptureOrder(context.Background(), "order"), apperrors.ErrPaymentProviderUnavailable)
}

func TestParsePayPalCaptureCompleted(t *testing.T) {
	ev, err := parsePayPalEvent([]byte(`{
		"id": "WH-1",
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": {"id": "CAP-1", "custom_id": "u1:featured", "amount": {"currency_code": "GBP", "value": "10.5"}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, ev.Kind)
	assert.Equal(t, "CAP-1", ev.SessionID)
	assert.Equal(t, int64(1050), ev.Amount)
	assert.Equal(t, "gbp", ev.Currency)

	meta, err := ValidateCheckoutMetadata(ev.Metadata)
	require.NoError(t, err)
	assert.Equal(t, "u1", meta.UserID)
	assert.Equal(t, models.PaymentPurposeFeatured, meta.Purpose)
}

func TestParsePayPalRefund(t *testing.T) {
	ev, err := parsePayPalEvent([]byte(`{
		"event_type": "PAYMENT.CAPTURE.REFUNDED",
		"resource": {"id": "REF-1", "links": [
			{"rel": "self", "href": "https://api.paypal.com/v2/payments/refunds/REF-1"},
			{"rel": "up", "href": "https://api.paypal.com/v2/payments/captures/CAP-1"}
		]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, EventRefunded, ev.Kind)
	assert.Equal(t, "CAP-1", ev.PaymentID)

	ev, err = parsePayPalEvent([]byte(`{"event_type": "CHECKOUT.ORDER.APPROVED", "resource": {}}`))
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, ev.Kind)

	_, err = parsePayPalEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2500), parseMinorUnits("25.00"))
	assert.Equal(t, int64(2500), parseMinorUnits("25"))
	assert.Equal(t, int64(1999), parseMinorUnits("19.999"))
	assert.Equal(t, int64(0), parseMinorUnits("abc"))
}
