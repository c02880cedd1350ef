package services

import (
	"errors"

	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/pkg/apperrors"
)

// handleRepoError maps repository sentinels to API errors. Anything else
// is an internal error.
func handleRepoError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrStudioNotFound):
		return apperrors.ErrStudioNotFound
	case errors.Is(err, repositories.ErrImageNotFound):
		return apperrors.ErrImageNotFound
	case errors.Is(err, repositories.ErrCampaignNotFound):
		return apperrors.ErrCampaignNotFound
	case errors.Is(err, repositories.ErrTicketNotFound):
		return apperrors.ErrTicketNotFound
	case errors.Is(err, repositories.ErrNoteNotFound):
		return apperrors.ErrNoteNotFound
	case errors.Is(err, repositories.ErrPaymentNotFound):
		return apperrors.NewNotFoundError("payment", "Payment not found")
	case errors.Is(err, repositories.ErrSubscriptionNotFound):
		return apperrors.NewNotFoundError("subscription", "Subscription not found")
	case errors.Is(err, repositories.ErrWaitlistNotFound):
		return apperrors.NewNotFoundError("waitlist", "Waitlist entry not found")
	case errors.Is(err, repositories.ErrUserAlreadyExists):
		return apperrors.ErrEmailAlreadyExists
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.NewConflictError("database", "Record already exists")
	}
	return apperrors.InternalError(err)
}
