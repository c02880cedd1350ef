package testutil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"studiofinder_backend/internal/algorithms"
	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/geocoding"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/services/payments"
	"studiofinder_backend/internal/storage"
	"studiofinder_backend/pkg/apperrors"
)

// SentEmail is one message captured by RecordingEmailProvider.
type SentEmail struct {
	To       []string
	Subject  string
	Template string
	Data     email.TemplateData
}

// RecordingEmailProvider records every message instead of sending it.
// Addresses in FailFor make SendTemplate return an error.
type RecordingEmailProvider struct {
	mu      sync.Mutex
	Sent    []SentEmail
	FailFor map[string]bool
}

func NewRecordingEmailProvider() *RecordingEmailProvider {
	return &RecordingEmailProvider{FailFor: map[string]bool{}}
}

func (p *RecordingEmailProvider) Send(ctx context.Context, msg *email.Email) error {
	return p.SendTemplate(ctx, msg.To, msg.Subject, "", nil)
}

func (p *RecordingEmailProvider) SendTemplate(ctx context.Context, to []string, subject, templateName string, data email.TemplateData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, addr := range to {
		if p.FailFor[addr] {
			return errors.New("smtp: mailbox unavailable")
		}
	}
	p.Sent = append(p.Sent, SentEmail{To: to, Subject: subject, Template: templateName, Data: data})
	return nil
}

// ByTemplate returns the captured messages rendered from templateName.
func (p *RecordingEmailProvider) ByTemplate(templateName string) []SentEmail {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []SentEmail
	for _, m := range p.Sent {
		if m.Template == templateName {
			out = append(out, m)
		}
	}
	return out
}

// FakeGateway is a payment gateway whose webhook parsing returns Event,
// or ErrInvalidWebhookSignature when the signature header is "bad".
type FakeGateway struct {
	mu        sync.Mutex
	Name      models.PaymentProvider
	Disabled  bool
	Event     *payments.WebhookEvent
	Checkouts []payments.CheckoutRequest
	Captured  []string
}

func NewFakeGateway(provider models.PaymentProvider) *FakeGateway {
	return &FakeGateway{Name: provider}
}

func (g *FakeGateway) Provider() models.PaymentProvider { return g.Name }

func (g *FakeGateway) Enabled() bool { return !g.Disabled }

func (g *FakeGateway) CreateCheckout(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Checkouts = append(g.Checkouts, req)
	id := strings.ToLower(string(g.Name)) + "_sess_" + req.UserID
	return &payments.CheckoutSession{Provider: g.Name, ID: id, URL: "https://pay.example.com/" + id}, nil
}

func (g *FakeGateway) CaptureOrder(ctx context.Context, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Captured = append(g.Captured, orderID)
	return nil
}

func (g *FakeGateway) ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*payments.WebhookEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if headers.Get("X-Test-Signature") == "bad" || g.Event == nil {
		return nil, apperrors.ErrInvalidWebhookSignature
	}
	event := *g.Event
	event.Provider = g.Name
	return &event, nil
}

// SucceededEvent builds a successful checkout event for userID.
func SucceededEvent(sessionID, userID string, purpose models.PaymentPurpose) *payments.WebhookEvent {
	return &payments.WebhookEvent{
		Type:      "checkout.session.completed",
		Kind:      payments.EventPaymentSucceeded,
		SessionID: sessionID,
		PaymentID: "pi_" + sessionID,
		Metadata: map[string]string{
			payments.MetaUserID:  userID,
			payments.MetaPurpose: strings.ToLower(string(purpose)),
		},
		Amount:   2500,
		Currency: "gbp",
	}
}

// FakeGeocoder resolves addresses from a fixed table.
type FakeGeocoder struct {
	Points map[string]algorithms.Point
	Calls  []string
}

func NewFakeGeocoder(points map[string]algorithms.Point) *FakeGeocoder {
	return &FakeGeocoder{Points: points}
}

func (g *FakeGeocoder) Geocode(ctx context.Context, address string) (*geocoding.Result, error) {
	g.Calls = append(g.Calls, address)
	p, ok := g.Points[address]
	if !ok {
		return nil, geocoding.ErrNotFound
	}
	return &geocoding.Result{Point: p, FormattedAddress: address}, nil
}

// MemoryStorage keeps uploaded objects in a map.
type MemoryStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Objects: map[string][]byte{}}
}

func (s *MemoryStorage) Save(ctx context.Context, key string, reader io.Reader, contentType string) (*storage.Object, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = data
	return &storage.Object{URL: "https://cdn.example.com/" + key, PublicID: key}, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, publicID)
	s.Deleted = append(s.Deleted, publicID)
	return nil
}
