package dto

import "studiofinder_backend/internal/models"

type SetStudioStatusRequest struct {
	Status models.StudioStatus `json:"status" validate:"required,is-studio-status"`
}

type SetFlagRequest struct {
	Value *bool `json:"value" validate:"required"`
}

type SetUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,is-user-role"`
}

type SetUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,is-user-status"`
}

type CreateNoteRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

type UpdateTicketRequest struct {
	Status        models.TicketStatus   `json:"status" validate:"omitempty,is-ticket-status"`
	Priority      models.TicketPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	AdminResponse *string               `json:"admin_response" validate:"omitempty,max=5000"`
}

type PlatformStats struct {
	UsersByStatus         map[string]int64 `json:"users_by_status"`
	StudiosByStatus       map[string]int64 `json:"studios_by_status"`
	SubscriptionsByStatus map[string]int64 `json:"subscriptions_by_status"`
	TicketsByStatus       map[string]int64 `json:"tickets_by_status"`
	FeaturedStudios       int64            `json:"featured_studios"`
	FeaturedLimit         int              `json:"featured_limit"`
	WaitlistEntries       int64            `json:"waitlist_entries"`
	RevenueByCurrency     map[string]int64 `json:"revenue_by_currency"`
}

type PageQuery struct {
	Page     int `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int `form:"page_size" json:"page_size" validate:"omitempty,min=1,max=100"`
}

type AdminStudioQuery struct {
	Status string `form:"status" json:"status" validate:"omitempty,is-studio-status"`
	Query  string `form:"q" json:"q" validate:"max=100"`
	PageQuery
}

type AdminUserQuery struct {
	Role   string `form:"role" json:"role" validate:"omitempty,is-user-role"`
	Status string `form:"status" json:"status" validate:"omitempty,is-user-status"`
	Query  string `form:"q" json:"q" validate:"max=100"`
	PageQuery
}

type PaymentQuery struct {
	Provider string `form:"provider" json:"provider" validate:"omitempty,oneof=STRIPE PAYPAL"`
	Status   string `form:"status" json:"status" validate:"omitempty,oneof=SUCCEEDED FAILED REFUNDED"`
	PageQuery
}

type TicketQuery struct {
	Status string `form:"status" json:"status" validate:"omitempty,is-ticket-status"`
	Type   string `form:"type" json:"type" validate:"omitempty,oneof=ISSUE SUGGESTION"`
	PageQuery
}

type SubscriptionOverview struct {
	ByStatus   map[string]int64      `json:"by_status"`
	EndingSoon []models.Subscription `json:"ending_soon"`
}
