package email

// Email is one outgoing message. HTMLBody wins over Body when both are set.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData представляет данные для шаблонов писем
type TemplateData map[string]interface{}

// Template names shipped in templates/.
const (
	TemplateVerifyEmail          = "verify_email"
	TemplatePasswordReset        = "password_reset"
	TemplateMembershipActive     = "membership_active"
	TemplateWaitlistConfirmation = "waitlist_confirmation"
	TemplateRenewalReminder      = "renewal_reminder"
	TemplateCampaign             = "campaign"
)
