package email

import "studiofinder_backend/internal/config"

// SMTPConfig содержит конфигурацию SMTP сервера
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func SMTPConfigFrom(cfg config.EmailConfig) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	}
}

// NewProvider returns the SMTP provider when a host is configured and the
// log-only provider otherwise.
func NewProvider(cfg config.EmailConfig, renderer TemplateRenderer) Provider {
	if cfg.SMTPHost == "" {
		return NewLogProvider(renderer)
	}
	return NewSMTPProvider(SMTPConfigFrom(cfg), renderer)
}
