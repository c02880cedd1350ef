package dto

import "studiofinder_backend/internal/models"

type CampaignRequest struct {
	Name     string                  `json:"name" validate:"required,min=1,max=200"`
	Subject  string                  `json:"subject" validate:"required,min=1,max=200"`
	HTMLBody string                  `json:"html_body" validate:"required,min=1"`
	Audience models.CampaignAudience `json:"audience" validate:"required,is-campaign-audience"`
}

type CampaignPreview struct {
	Audience      models.CampaignAudience `json:"audience"`
	Recipients    int                     `json:"recipients"`
	AlreadySent   int                     `json:"already_sent"`
	PendingToSend int                     `json:"pending_to_send"`
	SampleEmails  []string                `json:"sample_emails"`
}

type CampaignSendResult struct {
	Campaign  *models.EmailCampaign `json:"campaign"`
	Attempted int                   `json:"attempted"`
	Sent      int                   `json:"sent"`
	Failed    int                   `json:"failed"`
}

type DeliveryQuery struct {
	Status string `form:"status" json:"status" validate:"omitempty,oneof=SENT FAILED"`
	PageQuery
}
