package services

import (
	"strings"

	"gorm.io/gorm"

	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/pkg/apperrors"
)

type SupportService interface {
	CreateTicket(db *gorm.DB, userID string, req *dto.CreateTicketRequest) (*models.SupportTicket, error)
	ListMine(db *gorm.DB, userID string) ([]models.SupportTicket, error)
}

type SupportServiceImpl struct {
	supportRepo repositories.SupportRepository
}

func NewSupportService(supportRepo repositories.SupportRepository) SupportService {
	return &SupportServiceImpl{supportRepo: supportRepo}
}

func (s *SupportServiceImpl) CreateTicket(db *gorm.DB, userID string, req *dto.CreateTicketRequest) (*models.SupportTicket, error) {
	priority := req.Priority
	if priority == "" {
		priority = models.TicketPriorityMedium
	}
	ticket := &models.SupportTicket{
		UserID:   userID,
		Type:     req.Type,
		Subject:  strings.TrimSpace(req.Subject),
		Message:  strings.TrimSpace(req.Message),
		Status:   models.TicketStatusOpen,
		Priority: priority,
	}
	if err := s.supportRepo.Create(db, ticket); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return ticket, nil
}

func (s *SupportServiceImpl) ListMine(db *gorm.DB, userID string) ([]models.SupportTicket, error) {
	tickets, err := s.supportRepo.ListByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return tickets, nil
}
