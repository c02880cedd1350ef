package repositories

import (
	"time"

	"gorm.io/gorm"

	"studiofinder_backend/internal/algorithms"
	"studiofinder_backend/internal/models"
)

type StudioRepository interface {
	Create(db *gorm.DB, studio *models.StudioProfile) error
	FindByID(db *gorm.DB, id string) (*models.StudioProfile, error)
	FindByUserID(db *gorm.DB, userID string) (*models.StudioProfile, error)
	FindPublicByUsername(db *gorm.DB, username string) (*models.StudioProfile, error)
	Update(db *gorm.DB, studio *models.StudioProfile) error
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	Delete(db *gorm.DB, id string) error

	// Public listing
	ListFeatured(db *gorm.DB, limit int) ([]models.StudioProfile, error)
	SearchCandidates(db *gorm.DB, filter StudioSearchFilter) ([]models.StudioProfile, error)
	SuggestNames(db *gorm.DB, q string, limit int) ([]models.StudioProfile, error)
	SuggestCities(db *gorm.DB, q string, limit int) ([]string, error)

	// Featured cap
	CountFeatured(db *gorm.DB, excludeID string) (int64, error)

	// Admin operations
	FindWithFilter(db *gorm.DB, filter StudioAdminFilter) ([]models.StudioProfile, int64, error)
	CountByStatus(db *gorm.DB) (map[string]int64, error)

	// Enforcement
	FindExpiredMemberships(db *gorm.DB, now time.Time) ([]models.StudioProfile, error)
	FindExpiredFeatured(db *gorm.DB, now time.Time) ([]models.StudioProfile, error)
	FindNeedingReminder(db *gorm.DB, now, until time.Time) ([]models.StudioProfile, error)
}

// StudioSearchFilter narrows the public search before distance ranking.
type StudioSearchFilter struct {
	Query      string
	StudioType models.StudioType
	City       string
	Box        *algorithms.BoundingBox
}

type StudioAdminFilter struct {
	Status models.StudioStatus
	Search string
	Pagination
}

type StudioRepositoryImpl struct{}

func NewStudioRepository() StudioRepository {
	return &StudioRepositoryImpl{}
}

func publicStudios(db *gorm.DB) *gorm.DB {
	return db.Model(&models.StudioProfile{}).
		Where("status = ? AND is_visible = ?", models.StudioStatusActive, true)
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, created_at ASC")
}

func (r *StudioRepositoryImpl) Create(db *gorm.DB, studio *models.StudioProfile) error {
	if err := db.Create(studio).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *StudioRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.StudioProfile, error) {
	var studio models.StudioProfile
	if err := db.Preload("Images", orderedImages).First(&studio, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrStudioNotFound)
	}
	return &studio, nil
}

func (r *StudioRepositoryImpl) FindByUserID(db *gorm.DB, userID string) (*models.StudioProfile, error) {
	var studio models.StudioProfile
	if err := db.Preload("Images", orderedImages).First(&studio, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, ErrStudioNotFound)
	}
	return &studio, nil
}

func (r *StudioRepositoryImpl) FindPublicByUsername(db *gorm.DB, username string) (*models.StudioProfile, error) {
	var studio models.StudioProfile
	err := publicStudios(db).Preload("Images", orderedImages).
		Where("username = ?", username).
		First(&studio).Error
	if err != nil {
		return nil, notFound(err, ErrStudioNotFound)
	}
	return &studio, nil
}

func (r *StudioRepositoryImpl) Update(db *gorm.DB, studio *models.StudioProfile) error {
	return db.Omit("Images").Save(studio).Error
}

func (r *StudioRepositoryImpl) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.StudioProfile{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStudioNotFound
	}
	return nil
}

func (r *StudioRepositoryImpl) Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("studio_id = ?", id).Delete(&models.StudioImage{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.StudioProfile{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStudioNotFound
		}
		return nil
	})
}

func (r *StudioRepositoryImpl) ListFeatured(db *gorm.DB, limit int) ([]models.StudioProfile, error) {
	var studios []models.StudioProfile
	err := publicStudios(db).
		Preload("Images", orderedImages).
		Where("is_featured = ?", true).
		Order("updated_at DESC").
		Limit(limit).
		Find(&studios).Error
	return studios, err
}

func (r *StudioRepositoryImpl) SearchCandidates(db *gorm.DB, filter StudioSearchFilter) ([]models.StudioProfile, error) {
	query := publicStudios(db).Preload("Images", orderedImages)

	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR LOWER(city) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern)
	}
	if filter.StudioType != "" {
		query = query.Where("CAST(studio_types AS TEXT) LIKE ?", `%"`+string(filter.StudioType)+`"%`)
	}
	if filter.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.Box != nil {
		query = query.
			Where("latitude IS NOT NULL AND longitude IS NOT NULL").
			Where("latitude BETWEEN ? AND ?", filter.Box.MinLat, filter.Box.MaxLat).
			Where("longitude BETWEEN ? AND ?", filter.Box.MinLng, filter.Box.MaxLng)
	}

	var studios []models.StudioProfile
	err := query.Find(&studios).Error
	return studios, err
}

func (r *StudioRepositoryImpl) SuggestNames(db *gorm.DB, q string, limit int) ([]models.StudioProfile, error) {
	var studios []models.StudioProfile
	err := publicStudios(db).
		Select("id", "name", "username", "is_featured").
		Where("LOWER(name) LIKE ? ESCAPE '!'", likePattern(q)).
		Order("is_featured DESC, name ASC").
		Limit(limit).
		Find(&studios).Error
	return studios, err
}

func (r *StudioRepositoryImpl) SuggestCities(db *gorm.DB, q string, limit int) ([]string, error) {
	var cities []string
	err := publicStudios(db).
		Distinct("city").
		Where("city <> '' AND LOWER(city) LIKE ? ESCAPE '!'", likePattern(q)).
		Order("city ASC").
		Limit(limit).
		Pluck("city", &cities).Error
	return cities, err
}

func (r *StudioRepositoryImpl) CountFeatured(db *gorm.DB, excludeID string) (int64, error) {
	var count int64
	query := db.Model(&models.StudioProfile{}).Where("is_featured = ?", true)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *StudioRepositoryImpl) FindWithFilter(db *gorm.DB, filter StudioAdminFilter) ([]models.StudioProfile, int64, error) {
	query := db.Model(&models.StudioProfile{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(username) LIKE ? ESCAPE '!' OR LOWER(city) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var studios []models.StudioProfile
	err := filter.Pagination.apply(query).Order("updated_at DESC").Find(&studios).Error
	return studios, total, err
}

func (r *StudioRepositoryImpl) CountByStatus(db *gorm.DB) (map[string]int64, error) {
	return countGrouped(db.Model(&models.StudioProfile{}), "status")
}

func (r *StudioRepositoryImpl) FindExpiredMemberships(db *gorm.DB, now time.Time) ([]models.StudioProfile, error) {
	var studios []models.StudioProfile
	err := db.Where("status = ? AND membership_expires_at IS NOT NULL AND membership_expires_at < ?",
		models.StudioStatusActive, now).
		Order("membership_expires_at").
		Find(&studios).Error
	return studios, err
}

func (r *StudioRepositoryImpl) FindExpiredFeatured(db *gorm.DB, now time.Time) ([]models.StudioProfile, error) {
	var studios []models.StudioProfile
	err := db.Where("is_featured = ? AND (featured_until IS NULL OR featured_until < ?)", true, now).
		Find(&studios).Error
	return studios, err
}

func (r *StudioRepositoryImpl) FindNeedingReminder(db *gorm.DB, now, until time.Time) ([]models.StudioProfile, error) {
	var studios []models.StudioProfile
	err := db.Where("status = ? AND renewal_reminder_sent_at IS NULL", models.StudioStatusActive).
		Where("membership_expires_at IS NOT NULL AND membership_expires_at >= ? AND membership_expires_at <= ?", now, until).
		Find(&studios).Error
	return studios, err
}
