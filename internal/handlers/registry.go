package handlers

import (
	"database/sql"

	"studiofinder_backend/internal/services"
)

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler      *AuthHandler
	SignupHandler    *SignupHandler
	WebhookHandler   *WebhookHandler
	StudioHandler    *StudioHandler
	AdminHandler     *AdminHandler
	CampaignHandler  *CampaignHandler
	CommunityHandler *CommunityHandler
	SystemHandler    *SystemHandler
}

func NewAppHandlers(base *BaseHandler, svc *services.ServiceContainer, sqlDB *sql.DB, secureCookie bool) *AppHandlers {
	return &AppHandlers{
		AuthHandler:      NewAuthHandler(base, svc.AuthService, secureCookie),
		SignupHandler:    NewSignupHandler(base, svc.SignupService),
		WebhookHandler:   NewWebhookHandler(base, svc.PaymentService),
		StudioHandler:    NewStudioHandler(base, svc.StudioService),
		AdminHandler:     NewAdminHandler(base, svc.AdminService),
		CampaignHandler:  NewCampaignHandler(base, svc.CampaignService),
		CommunityHandler: NewCommunityHandler(base, svc.WaitlistService, svc.SupportService),
		SystemHandler:    NewSystemHandler(base, sqlDB, svc.EnforcementService),
	}
}
