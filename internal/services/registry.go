package services

import (
	"studiofinder_backend/internal/auth"
	"studiofinder_backend/internal/cache"
	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/geocoding"
	"studiofinder_backend/internal/imageprocessor"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/services/payments"
	"studiofinder_backend/internal/storage"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService        AuthService
	SignupService      SignupService
	PaymentService     PaymentService
	StudioService      StudioService
	AdminService       AdminService
	CampaignService    CampaignService
	WaitlistService    WaitlistService
	SupportService     SupportService
	EnforcementService EnforcementService
}

// Dependencies are the collaborators the services are built from. Tests
// swap in fakes for the third-party ones.
type Dependencies struct {
	Tokens          *auth.TokenManager
	Email           email.Provider
	Storage         storage.Storage
	Geocoder        geocoding.Geocoder
	Cache           cache.SuggestionCache
	Gateways        []payments.Gateway
	BaseURL         string
	EmailRatePerSec float64
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	studioRepo := repositories.NewStudioRepository()
	imageRepo := repositories.NewImageRepository()
	paymentRepo := repositories.NewPaymentRepository()
	subscriptionRepo := repositories.NewSubscriptionRepository()
	campaignRepo := repositories.NewCampaignRepository()
	supportRepo := repositories.NewSupportRepository()
	waitlistRepo := repositories.NewWaitlistRepository()
	noteRepo := repositories.NewAdminNoteRepository()

	notifier := NewNotifier(deps.Email, deps.BaseURL)

	return &ServiceContainer{
		AuthService:    NewAuthService(userRepo, deps.Tokens, notifier),
		SignupService:  NewSignupService(userRepo, studioRepo, deps.Gateways, deps.BaseURL),
		PaymentService: NewPaymentService(paymentRepo, userRepo, studioRepo, subscriptionRepo, deps.Gateways, notifier),
		StudioService: NewStudioService(
			studioRepo, imageRepo, deps.Geocoder, deps.Storage, imageprocessor.NewProcessor(85), deps.Cache,
		),
		AdminService: NewAdminService(
			userRepo, studioRepo, imageRepo, noteRepo, paymentRepo, subscriptionRepo, waitlistRepo, supportRepo, deps.Storage,
		),
		CampaignService:    NewCampaignService(campaignRepo, userRepo, waitlistRepo, deps.Email, deps.EmailRatePerSec),
		WaitlistService:    NewWaitlistService(waitlistRepo, notifier),
		SupportService:     NewSupportService(supportRepo),
		EnforcementService: NewEnforcementService(studioRepo, userRepo, subscriptionRepo, notifier),
	}
}
