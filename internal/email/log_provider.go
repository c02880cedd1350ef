package email

import (
	"context"

	"studiofinder_backend/internal/logger"
)

// LogProvider writes messages to the log instead of sending them. Used in
// development when SMTP is not configured.
type LogProvider struct {
	renderer TemplateRenderer
}

func NewLogProvider(renderer TemplateRenderer) *LogProvider {
	return &LogProvider{renderer: renderer}
}

func (p *LogProvider) Send(ctx context.Context, msg *Email) error {
	logger.CtxInfo(ctx, "email not sent (no SMTP configured)",
		"to", msg.To,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTMLBody),
	)
	return nil
}

func (p *LogProvider) SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error {
	html, err := renderWith(p.renderer, templateName, data)
	if err != nil {
		return err
	}
	return p.Send(ctx, &Email{To: to, Subject: subject, HTMLBody: html})
}
