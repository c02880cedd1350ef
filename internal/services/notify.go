package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/metrics"
)

// Notifier sends templated mail and records the outcome. Failures are
// logged and returned; callers decide whether they are fatal.
type Notifier struct {
	provider email.Provider
	baseURL  string
}

func NewNotifier(provider email.Provider, baseURL string) *Notifier {
	return &Notifier{provider: provider, baseURL: strings.TrimRight(baseURL, "/")}
}

// Link builds an absolute link into the web client.
func (n *Notifier) Link(path string) string {
	return n.baseURL + path
}

func (n *Notifier) Send(ctx context.Context, to, subject, template string, data email.TemplateData) error {
	err := n.provider.SendTemplate(ctx, []string{to}, subject, template, data)
	metrics.RecordEmail(template, err)
	if err != nil {
		logger.CtxWithError(ctx, "failed to send email", err, "template", template, "to", to)
	}
	return err
}

// newToken returns an unguessable token for email links.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
