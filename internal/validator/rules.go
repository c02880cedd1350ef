package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"studiofinder_backend/internal/models"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-user-status", validateUserStatus)
	mustRegister("is-studio-status", validateStudioStatus)
	mustRegister("is-studio-type", validateStudioType)
	mustRegister("is-campaign-audience", validateCampaignAudience)
	mustRegister("is-ticket-status", validateTicketStatus)
	mustRegister("studio-username", validateUsernameTag)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' handles empties
	}
	switch models.UserRole(value) {
	case models.UserRoleUser, models.UserRoleStudioOwner, models.UserRoleAdmin:
		return true
	default:
		return false
	}
}

func validateUserStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.UserStatus(value) {
	case models.UserStatusPending, models.UserStatusActive, models.UserStatusSuspended:
		return true
	default:
		return false
	}
}

func validateStudioStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.StudioStatus(value) {
	case models.StudioStatusActive, models.StudioStatusInactive, models.StudioStatusPending:
		return true
	default:
		return false
	}
}

// validateStudioType is applied with `dive` to studio type lists.
func validateStudioType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, t := range models.AllStudioTypes() {
		if string(t) == value {
			return true
		}
	}
	return false
}

func validateCampaignAudience(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.CampaignAudience(value) {
	case models.CampaignAudienceAllUsers, models.CampaignAudienceStudioOwners, models.CampaignAudienceWaitlist:
		return true
	default:
		return false
	}
}

func validateTicketStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.TicketStatus(value) {
	case models.TicketStatusOpen, models.TicketStatusInProgress, models.TicketStatusResolved, models.TicketStatusClosed:
		return true
	default:
		return false
	}
}

func validateUsernameTag(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return CheckUsernameSyntax(value) == ""
}
