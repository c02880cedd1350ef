package models

type UserRole string
type UserStatus string
type MembershipTier string
type StudioStatus string
type StudioType string
type PaymentProvider string
type PaymentPurpose string
type PaymentStatus string
type SubscriptionStatus string
type CampaignAudience string
type CampaignStatus string
type DeliveryStatus string
type TicketType string
type TicketStatus string
type TicketPriority string

const (
	UserRoleUser        UserRole = "USER"
	UserRoleStudioOwner UserRole = "STUDIO_OWNER"
	UserRoleAdmin       UserRole = "ADMIN"

	UserStatusPending   UserStatus = "PENDING"
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"

	MembershipTierBasic   MembershipTier = "BASIC"
	MembershipTierPremium MembershipTier = "PREMIUM"

	StudioStatusActive   StudioStatus = "ACTIVE"
	StudioStatusInactive StudioStatus = "INACTIVE"
	StudioStatusPending  StudioStatus = "PENDING"

	StudioTypeHome      StudioType = "HOME"
	StudioTypeRecording StudioType = "RECORDING"
	StudioTypePodcast   StudioType = "PODCAST"
	StudioTypeVoiceover StudioType = "VOICEOVER"
	StudioTypeMobile    StudioType = "MOBILE"
	StudioTypeEditing   StudioType = "EDITING"

	PaymentProviderStripe PaymentProvider = "STRIPE"
	PaymentProviderPayPal PaymentProvider = "PAYPAL"

	PaymentPurposeMembership PaymentPurpose = "MEMBERSHIP"
	PaymentPurposeFeatured   PaymentPurpose = "FEATURED"

	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"

	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"

	CampaignAudienceAllUsers     CampaignAudience = "ALL_USERS"
	CampaignAudienceStudioOwners CampaignAudience = "STUDIO_OWNERS"
	CampaignAudienceWaitlist     CampaignAudience = "WAITLIST"

	CampaignStatusDraft   CampaignStatus = "DRAFT"
	CampaignStatusSending CampaignStatus = "SENDING"
	CampaignStatusSent    CampaignStatus = "SENT"
	CampaignStatusFailed  CampaignStatus = "FAILED"

	DeliveryStatusSent   DeliveryStatus = "SENT"
	DeliveryStatusFailed DeliveryStatus = "FAILED"

	TicketTypeIssue      TicketType = "ISSUE"
	TicketTypeSuggestion TicketType = "SUGGESTION"

	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"

	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// MaxFeaturedStudios caps how many studios can be featured at once.
const MaxFeaturedStudios = 6

func AllStudioTypes() []StudioType {
	return []StudioType{
		StudioTypeHome, StudioTypeRecording, StudioTypePodcast,
		StudioTypeVoiceover, StudioTypeMobile, StudioTypeEditing,
	}
}
