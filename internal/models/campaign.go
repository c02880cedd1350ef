package models

import "time"

type EmailCampaign struct {
	BaseModel
	CreatedBy   string           `gorm:"type:varchar(36);not null" json:"created_by"`
	Name        string           `gorm:"not null" json:"name"`
	Subject     string           `gorm:"not null" json:"subject"`
	HTMLBody    string           `gorm:"type:text;not null" json:"html_body"`
	Audience    CampaignAudience `gorm:"type:varchar(20);not null" json:"audience"`
	Status      CampaignStatus   `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`
	SentCount   int              `json:"sent_count"`
	FailedCount int              `json:"failed_count"`
	SentAt      *time.Time       `json:"sent_at,omitempty"`
}

type EmailDelivery struct {
	BaseModel
	CampaignID string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_delivery_campaign_email" json:"campaign_id"`
	Email      string         `gorm:"not null;uniqueIndex:idx_delivery_campaign_email" json:"email"`
	UserID     *string        `gorm:"type:varchar(36)" json:"user_id,omitempty"`
	Status     DeliveryStatus `gorm:"type:varchar(20);not null" json:"status"`
	Error      string         `json:"error,omitempty"`
	SentAt     *time.Time     `json:"sent_at,omitempty"`
}
