package payments

import (
	"fmt"
	"strings"

	"studiofinder_backend/internal/models"
	"studiofinder_backend/pkg/apperrors"
)

const (
	MetaUserID   = "user_id"
	MetaPurpose  = "purpose"
	MetaUsername = "username"
)

// CheckoutMetadata is the validated metadata attached to every checkout.
type CheckoutMetadata struct {
	UserID   string
	Purpose  models.PaymentPurpose
	Username string
}

// ValidateCheckoutMetadata checks the metadata a provider echoed back.
// user_id must be present and purpose must be membership or featured in
// any letter case.
func ValidateCheckoutMetadata(meta map[string]string) (*CheckoutMetadata, error) {
	problems := map[string]string{}

	userID := strings.TrimSpace(meta[MetaUserID])
	if userID == "" {
		problems[MetaUserID] = "missing"
	}

	var purpose models.PaymentPurpose
	raw := strings.TrimSpace(meta[MetaPurpose])
	switch strings.ToUpper(raw) {
	case string(models.PaymentPurposeMembership):
		purpose = models.PaymentPurposeMembership
	case string(models.PaymentPurposeFeatured):
		purpose = models.PaymentPurposeFeatured
	case "":
		problems[MetaPurpose] = "missing"
	default:
		problems[MetaPurpose] = fmt.Sprintf("unknown purpose %q", raw)
	}

	if len(problems) > 0 {
		return nil, apperrors.ErrInvalidPaymentMetadata.WithDetails(problems)
	}
	return &CheckoutMetadata{
		UserID:   userID,
		Purpose:  purpose,
		Username: strings.TrimSpace(meta[MetaUsername]),
	}, nil
}

func metadataFor(req CheckoutRequest) map[string]string {
	return map[string]string{
		MetaUserID:   req.UserID,
		MetaPurpose:  strings.ToLower(string(req.Purpose)),
		MetaUsername: req.Username,
	}
}

// encodeCustomID packs user and purpose into PayPal's single custom_id field.
func encodeCustomID(req CheckoutRequest) string {
	return req.UserID + ":" + strings.ToLower(string(req.Purpose))
}

func decodeCustomID(customID string) map[string]string {
	userID, purpose, _ := strings.Cut(customID, ":")
	return map[string]string{MetaUserID: userID, MetaPurpose: purpose}
}
