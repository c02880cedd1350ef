package dto

import (
	"time"

	"studiofinder_backend/internal/models"
)

type UsernameAvailability struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type ReserveUsernameRequest struct {
	Username string `json:"username" validate:"required,studio-username"`
}

type CheckoutRequest struct {
	Purpose  string `json:"purpose" validate:"required,oneof=membership featured MEMBERSHIP FEATURED"`
	Provider string `json:"provider" validate:"omitempty,oneof=stripe paypal STRIPE PAYPAL"`
}

type CapturePayPalRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

type MembershipStatus struct {
	UserStatus          models.UserStatus         `json:"user_status"`
	Tier                models.MembershipTier     `json:"tier"`
	Username            string                    `json:"username,omitempty"`
	SubscriptionStatus  models.SubscriptionStatus `json:"subscription_status,omitempty"`
	CurrentPeriodEnd    *time.Time                `json:"current_period_end,omitempty"`
	StudioStatus        models.StudioStatus       `json:"studio_status,omitempty"`
	IsFeatured          bool                      `json:"is_featured"`
	FeaturedUntil       *time.Time                `json:"featured_until,omitempty"`
	MembershipExpiresAt *time.Time                `json:"membership_expires_at,omitempty"`
}
