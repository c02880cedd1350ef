package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/pkg/apperrors"
)

type WaitlistService interface {
	Join(ctx context.Context, db *gorm.DB, req *dto.JoinWaitlistRequest) (*dto.JoinWaitlistResponse, error)
}

type WaitlistServiceImpl struct {
	waitlistRepo repositories.WaitlistRepository
	notifier     *Notifier
}

func NewWaitlistService(waitlistRepo repositories.WaitlistRepository, notifier *Notifier) WaitlistService {
	return &WaitlistServiceImpl{waitlistRepo: waitlistRepo, notifier: notifier}
}

// Join is idempotent per email. The confirmation mail is best effort.
func (s *WaitlistServiceImpl) Join(ctx context.Context, db *gorm.DB, req *dto.JoinWaitlistRequest) (*dto.JoinWaitlistResponse, error) {
	address := normalizeEmail(req.Email)

	existing, err := s.waitlistRepo.FindByEmail(db, address)
	switch {
	case err == nil:
		return &dto.JoinWaitlistResponse{AlreadyJoined: true, Entry: existing}, nil
	case !errors.Is(err, repositories.ErrWaitlistNotFound):
		return nil, apperrors.InternalError(err)
	}

	entry := &models.WaitlistEntry{Name: strings.TrimSpace(req.Name), Email: address}
	if err := s.waitlistRepo.Create(db, entry); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			existing, findErr := s.waitlistRepo.FindByEmail(db, address)
			if findErr != nil {
				return nil, apperrors.InternalError(findErr)
			}
			return &dto.JoinWaitlistResponse{AlreadyJoined: true, Entry: existing}, nil
		}
		return nil, apperrors.InternalError(err)
	}

	_ = s.notifier.Send(ctx, entry.Email, "You're on the list", email.TemplateWaitlistConfirmation, email.TemplateData{
		"Name": entry.Name,
	})
	return &dto.JoinWaitlistResponse{Entry: entry}, nil
}
