package repositories

import (
	"time"

	"gorm.io/gorm"

	"studiofinder_backend/internal/models"
)

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.Payment) error
	FindBySessionID(db *gorm.DB, sessionID string) (*models.Payment, error)
	MarkRefunded(db *gorm.DB, provider models.PaymentProvider, providerPaymentID string, at time.Time) (int64, error)
	FindWithFilter(db *gorm.DB, filter PaymentFilter) ([]PaymentRow, int64, error)
	SumSucceeded(db *gorm.DB) (map[string]int64, error)
}

type PaymentFilter struct {
	Provider models.PaymentProvider
	Status   models.PaymentStatus
	Pagination
}

// PaymentRow is a payment joined with its payer for admin listings.
type PaymentRow struct {
	models.Payment
	UserEmail string `json:"user_email"`
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

// Create returns ErrDuplicate when the provider session was already recorded.
func (r *PaymentRepositoryImpl) Create(db *gorm.DB, payment *models.Payment) error {
	if err := db.Create(payment).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *PaymentRepositoryImpl) FindBySessionID(db *gorm.DB, sessionID string) (*models.Payment, error) {
	var payment models.Payment
	if err := db.First(&payment, "provider_session_id = ?", sessionID).Error; err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) MarkRefunded(db *gorm.DB, provider models.PaymentProvider, providerPaymentID string, at time.Time) (int64, error) {
	result := db.Model(&models.Payment{}).
		Where("provider = ? AND provider_payment_id = ? AND status <> ?", provider, providerPaymentID, models.PaymentStatusRefunded).
		Updates(map[string]interface{}{
			"status":      models.PaymentStatusRefunded,
			"refunded_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *PaymentRepositoryImpl) FindWithFilter(db *gorm.DB, filter PaymentFilter) ([]PaymentRow, int64, error) {
	query := db.Model(&models.Payment{})
	if filter.Provider != "" {
		query = query.Where("payments.provider = ?", filter.Provider)
	}
	if filter.Status != "" {
		query = query.Where("payments.status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []PaymentRow
	err := filter.Pagination.apply(query).
		Select("payments.*, users.email AS user_email").
		Joins("LEFT JOIN users ON users.id = payments.user_id").
		Order("payments.created_at DESC").
		Scan(&rows).Error
	return rows, total, err
}

// SumSucceeded totals successful payments per currency in minor units.
func (r *PaymentRepositoryImpl) SumSucceeded(db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Currency string
		Total    int64
	}
	err := db.Model(&models.Payment{}).
		Select("currency, COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", models.PaymentStatusSucceeded).
		Group("currency").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Currency] = row.Total
	}
	return out, nil
}
