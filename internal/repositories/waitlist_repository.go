package repositories

import (
	"gorm.io/gorm"

	"studiofinder_backend/internal/models"
)

type WaitlistRepository interface {
	Create(db *gorm.DB, entry *models.WaitlistEntry) error
	FindByEmail(db *gorm.DB, email string) (*models.WaitlistEntry, error)
	List(db *gorm.DB, p Pagination) ([]models.WaitlistEntry, int64, error)
	All(db *gorm.DB) ([]models.WaitlistEntry, error)
	Count(db *gorm.DB) (int64, error)
}

type WaitlistRepositoryImpl struct{}

func NewWaitlistRepository() WaitlistRepository {
	return &WaitlistRepositoryImpl{}
}

func (r *WaitlistRepositoryImpl) Create(db *gorm.DB, entry *models.WaitlistEntry) error {
	if err := db.Create(entry).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *WaitlistRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := db.First(&entry, "email = ?", email).Error; err != nil {
		return nil, notFound(err, ErrWaitlistNotFound)
	}
	return &entry, nil
}

func (r *WaitlistRepositoryImpl) List(db *gorm.DB, p Pagination) ([]models.WaitlistEntry, int64, error) {
	var total int64
	if err := db.Model(&models.WaitlistEntry{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []models.WaitlistEntry
	err := p.apply(db.Model(&models.WaitlistEntry{})).Order("created_at DESC").Find(&entries).Error
	return entries, total, err
}

func (r *WaitlistRepositoryImpl) All(db *gorm.DB) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	err := db.Order("created_at ASC").Find(&entries).Error
	return entries, err
}

func (r *WaitlistRepositoryImpl) Count(db *gorm.DB) (int64, error) {
	var total int64
	err := db.Model(&models.WaitlistEntry{}).Count(&total).Error
	return total, err
}
