package repositories

import (
	"gorm.io/gorm"

	"studiofinder_backend/internal/models"
)

type SupportRepository interface {
	Create(db *gorm.DB, ticket *models.SupportTicket) error
	FindByID(db *gorm.DB, id string) (*models.SupportTicket, error)
	ListByUser(db *gorm.DB, userID string) ([]models.SupportTicket, error)
	FindWithFilter(db *gorm.DB, filter TicketFilter) ([]models.SupportTicket, int64, error)
	Update(db *gorm.DB, ticket *models.SupportTicket) error
	CountByStatus(db *gorm.DB) (map[string]int64, error)
}

type TicketFilter struct {
	Status models.TicketStatus
	Type   models.TicketType
	Pagination
}

type SupportRepositoryImpl struct{}

func NewSupportRepository() SupportRepository {
	return &SupportRepositoryImpl{}
}

func (r *SupportRepositoryImpl) Create(db *gorm.DB, ticket *models.SupportTicket) error {
	return db.Create(ticket).Error
}

func (r *SupportRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := db.First(&ticket, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrTicketNotFound)
	}
	return &ticket, nil
}

func (r *SupportRepositoryImpl) ListByUser(db *gorm.DB, userID string) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&tickets).Error
	return tickets, err
}

func (r *SupportRepositoryImpl) FindWithFilter(db *gorm.DB, filter TicketFilter) ([]models.SupportTicket, int64, error) {
	query := db.Model(&models.SupportTicket{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tickets []models.SupportTicket
	err := filter.Pagination.apply(query).Order("created_at DESC").Find(&tickets).Error
	return tickets, total, err
}

func (r *SupportRepositoryImpl) Update(db *gorm.DB, ticket *models.SupportTicket) error {
	return db.Save(ticket).Error
}

func (r *SupportRepositoryImpl) CountByStatus(db *gorm.DB) (map[string]int64, error) {
	return countGrouped(db.Model(&models.SupportTicket{}), "status")
}
