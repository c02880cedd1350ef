package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studiofinder_backend/internal/models"
)

type SubscriptionRepository interface {
	FindByUserID(db *gorm.DB, userID string) (*models.Subscription, error)
	Upsert(db *gorm.DB, sub *models.Subscription) error
	ExpireForUsers(db *gorm.DB, userIDs []string) error
	CountByStatus(db *gorm.DB) (map[string]int64, error)
	ListActiveEndingBefore(db *gorm.DB, before time.Time) ([]models.Subscription, error)
}

type SubscriptionRepositoryImpl struct{}

func NewSubscriptionRepository() SubscriptionRepository {
	return &SubscriptionRepositoryImpl{}
}

func (r *SubscriptionRepositoryImpl) FindByUserID(db *gorm.DB, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := db.First(&sub, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, ErrSubscriptionNotFound)
	}
	return &sub, nil
}

// Upsert keeps one subscription row per user.
func (r *SubscriptionRepositoryImpl) Upsert(db *gorm.DB, sub *models.Subscription) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tier", "provider", "status", "current_period_start", "current_period_end", "cancelled_at", "updated_at",
		}),
	}).Create(sub).Error
}

func (r *SubscriptionRepositoryImpl) ExpireForUsers(db *gorm.DB, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	return db.Model(&models.Subscription{}).
		Where("user_id IN ? AND status = ?", userIDs, models.SubscriptionStatusActive).
		Update("status", models.SubscriptionStatusExpired).Error
}

func (r *SubscriptionRepositoryImpl) CountByStatus(db *gorm.DB) (map[string]int64, error) {
	return countGrouped(db.Model(&models.Subscription{}), "status")
}

func (r *SubscriptionRepositoryImpl) ListActiveEndingBefore(db *gorm.DB, before time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := db.Where("status = ? AND current_period_end < ?", models.SubscriptionStatusActive, before).
		Order("current_period_end").
		Find(&subs).Error
	return subs, err
}
