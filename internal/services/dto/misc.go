package dto

import "studiofinder_backend/internal/models"

type JoinWaitlistRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email,max=254"`
}

type JoinWaitlistResponse struct {
	AlreadyJoined bool                  `json:"already_joined"`
	Entry         *models.WaitlistEntry `json:"entry"`
}

type CreateTicketRequest struct {
	Type     models.TicketType     `json:"type" validate:"required,oneof=ISSUE SUGGESTION"`
	Subject  string                `json:"subject" validate:"required,min=1,max=200"`
	Message  string                `json:"message" validate:"required,min=1,max=5000"`
	Priority models.TicketPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

// EnforcementReport summarises one subscription enforcement pass.
type EnforcementReport struct {
	RanAt              string              `json:"ran_at"`
	DryRun             bool                `json:"dry_run"`
	ExpiredMemberships int                 `json:"expired_memberships"`
	ExpiredFeatured    int                 `json:"expired_featured"`
	RemindersSent      int                 `json:"reminders_sent"`
	ExpiredStudioIDs   []string            `json:"expired_studio_ids"`
	UnfeaturedIDs      []string            `json:"unfeatured_studio_ids"`
	RemindedStudioIDs  []string            `json:"reminded_studio_ids"`
	Changes            []EnforcementChange `json:"changes"`
}

// EnforcementChange is one studio row touched (or, in a dry run, that
// would be touched) by enforcement.
type EnforcementChange struct {
	StudioID string `json:"studio_id"`
	Username string `json:"username"`
	Action   string `json:"action"`
	Deadline string `json:"deadline,omitempty"`
}
