package repositories

import (
	"gorm.io/gorm"

	"studiofinder_backend/internal/models"
)

type AdminNoteRepository interface {
	Create(db *gorm.DB, note *models.AdminNote) error
	ListForUser(db *gorm.DB, userID string) ([]models.AdminNote, error)
	Delete(db *gorm.DB, userID, noteID string) error
}

type AdminNoteRepositoryImpl struct{}

func NewAdminNoteRepository() AdminNoteRepository {
	return &AdminNoteRepositoryImpl{}
}

func (r *AdminNoteRepositoryImpl) Create(db *gorm.DB, note *models.AdminNote) error {
	return db.Create(note).Error
}

func (r *AdminNoteRepositoryImpl) ListForUser(db *gorm.DB, userID string) ([]models.AdminNote, error) {
	var notes []models.AdminNote
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notes).Error
	return notes, err
}

func (r *AdminNoteRepositoryImpl) Delete(db *gorm.DB, userID, noteID string) error {
	result := db.Delete(&models.AdminNote{}, "id = ? AND user_id = ?", noteID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
