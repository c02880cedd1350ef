package repositories

import (
	"gorm.io/gorm"

	"studiofinder_backend/internal/models"
)

type ImageRepository interface {
	Create(db *gorm.DB, image *models.StudioImage) error
	FindByID(db *gorm.DB, studioID, imageID string) (*models.StudioImage, error)
	ListByStudio(db *gorm.DB, studioID string) ([]models.StudioImage, error)
	CountByStudio(db *gorm.DB, studioID string) (int64, error)
	Delete(db *gorm.DB, imageID string) error
	UpdateSortOrder(db *gorm.DB, imageID string, order int) error
}

type ImageRepositoryImpl struct{}

func NewImageRepository() ImageRepository {
	return &ImageRepositoryImpl{}
}

func (r *ImageRepositoryImpl) Create(db *gorm.DB, image *models.StudioImage) error {
	return db.Create(image).Error
}

// FindByID only returns images that belong to studioID.
func (r *ImageRepositoryImpl) FindByID(db *gorm.DB, studioID, imageID string) (*models.StudioImage, error) {
	var image models.StudioImage
	if err := db.First(&image, "id = ? AND studio_id = ?", imageID, studioID).Error; err != nil {
		return nil, notFound(err, ErrImageNotFound)
	}
	return &image, nil
}

func (r *ImageRepositoryImpl) ListByStudio(db *gorm.DB, studioID string) ([]models.StudioImage, error) {
	var images []models.StudioImage
	err := orderedImages(db.Where("studio_id = ?", studioID)).Find(&images).Error
	return images, err
}

func (r *ImageRepositoryImpl) CountByStudio(db *gorm.DB, studioID string) (int64, error) {
	var count int64
	err := db.Model(&models.StudioImage{}).Where("studio_id = ?", studioID).Count(&count).Error
	return count, err
}

func (r *ImageRepositoryImpl) Delete(db *gorm.DB, imageID string) error {
	result := db.Delete(&models.StudioImage{}, "id = ?", imageID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *ImageRepositoryImpl) UpdateSortOrder(db *gorm.DB, imageID string, order int) error {
	return db.Model(&models.StudioImage{}).Where("id = ?", imageID).Update("sort_order", order).Error
}
