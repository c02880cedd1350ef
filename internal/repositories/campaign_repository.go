package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studiofinder_backend/internal/models"
)

type CampaignRepository interface {
	Create(db *gorm.DB, campaign *models.EmailCampaign) error
	FindByID(db *gorm.DB, id string) (*models.EmailCampaign, error)
	List(db *gorm.DB, p Pagination) ([]models.EmailCampaign, int64, error)
	Update(db *gorm.DB, campaign *models.EmailCampaign) error
	Delete(db *gorm.DB, id string) error
	ClaimForSending(db *gorm.DB, id string) (bool, error)

	SentEmails(db *gorm.DB, campaignID string) (map[string]bool, error)
	SaveDelivery(db *gorm.DB, delivery *models.EmailDelivery) error
	ListDeliveries(db *gorm.DB, campaignID string, status models.DeliveryStatus, p Pagination) ([]models.EmailDelivery, int64, error)
	CountDeliveries(db *gorm.DB, campaignID string) (map[string]int64, error)
}

type CampaignRepositoryImpl struct{}

func NewCampaignRepository() CampaignRepository {
	return &CampaignRepositoryImpl{}
}

func (r *CampaignRepositoryImpl) Create(db *gorm.DB, campaign *models.EmailCampaign) error {
	return db.Create(campaign).Error
}

func (r *CampaignRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.EmailCampaign, error) {
	var campaign models.EmailCampaign
	if err := db.First(&campaign, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrCampaignNotFound)
	}
	return &campaign, nil
}

func (r *CampaignRepositoryImpl) List(db *gorm.DB, p Pagination) ([]models.EmailCampaign, int64, error) {
	var total int64
	if err := db.Model(&models.EmailCampaign{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var campaigns []models.EmailCampaign
	err := p.apply(db.Model(&models.EmailCampaign{})).Order("created_at DESC").Find(&campaigns).Error
	return campaigns, total, err
}

func (r *CampaignRepositoryImpl) Update(db *gorm.DB, campaign *models.EmailCampaign) error {
	return db.Save(campaign).Error
}

// ClaimForSending moves the campaign to SENDING unless a send already holds
// it. Reports false when the row was not claimed.
func (r *CampaignRepositoryImpl) ClaimForSending(db *gorm.DB, id string) (bool, error) {
	result := db.Model(&models.EmailCampaign{}).
		Where("id = ? AND status IN ?", id, []models.CampaignStatus{
			models.CampaignStatusDraft, models.CampaignStatusFailed, models.CampaignStatusSent,
		}).
		Update("status", models.CampaignStatusSending)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *CampaignRepositoryImpl) Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", id).Delete(&models.EmailDelivery{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.EmailCampaign{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCampaignNotFound
		}
		return nil
	})
}

// SentEmails returns the set of addresses already delivered successfully.
func (r *CampaignRepositoryImpl) SentEmails(db *gorm.DB, campaignID string) (map[string]bool, error) {
	var emails []string
	err := db.Model(&models.EmailDelivery{}).
		Where("campaign_id = ? AND status = ?", campaignID, models.DeliveryStatusSent).
		Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(emails))
	for _, e := range emails {
		out[e] = true
	}
	return out, nil
}

// SaveDelivery inserts or overwrites the (campaign, email) delivery row.
func (r *CampaignRepositoryImpl) SaveDelivery(db *gorm.DB, delivery *models.EmailDelivery) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "error", "sent_at", "updated_at"}),
	}).Create(delivery).Error
}

func (r *CampaignRepositoryImpl) ListDeliveries(db *gorm.DB, campaignID string, status models.DeliveryStatus, p Pagination) ([]models.EmailDelivery, int64, error) {
	query := db.Model(&models.EmailDelivery{}).Where("campaign_id = ?", campaignID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var deliveries []models.EmailDelivery
	err := p.apply(query).Order("created_at ASC").Find(&deliveries).Error
	return deliveries, total, err
}

func (r *CampaignRepositoryImpl) CountDeliveries(db *gorm.DB, campaignID string) (map[string]int64, error) {
	return countGrouped(db.Model(&models.EmailDelivery{}).Where("campaign_id = ?", campaignID), "status")
}
