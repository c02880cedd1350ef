package email

import "context"

// Provider определяет интерфейс для отправки email
type Provider interface {
	Send(ctx context.Context, msg *Email) error
	SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error
}

// TemplateRenderer определяет интерфейс для рендеринга шаблонов
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}
