package models

import "time"

// Payment records one provider payment. ProviderSessionID (Stripe checkout
// session or PayPal capture) is the idempotency key for webhooks.
type Payment struct {
	BaseModel
	UserID            string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Provider          PaymentProvider `gorm:"type:varchar(20);not null" json:"provider"`
	ProviderSessionID string          `gorm:"uniqueIndex;not null" json:"provider_session_id"`
	ProviderPaymentID string          `gorm:"index" json:"provider_payment_id"`
	Purpose           PaymentPurpose  `gorm:"type:varchar(20);not null" json:"purpose"`
	Amount            int64           `json:"amount"` // minor units
	Currency          string          `gorm:"type:varchar(3)" json:"currency"`
	Status            PaymentStatus   `gorm:"type:varchar(20);not null" json:"status"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	RefundedAt        *time.Time      `json:"refunded_at,omitempty"`
}

type Subscription struct {
	BaseModel
	UserID             string             `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	Tier               MembershipTier     `gorm:"type:varchar(20);not null" json:"tier"`
	Provider           PaymentProvider    `gorm:"type:varchar(20)" json:"provider"`
	Status             SubscriptionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
}
