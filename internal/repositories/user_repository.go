package repositories

import (
	"time"

	"gorm.io/gorm"

	"studiofinder_backend/internal/models"
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindAccess(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByVerificationToken(db *gorm.DB, token string) (*models.User, error)
	FindByResetToken(db *gorm.DB, token string) (*models.User, error)
	UsernameTaken(db *gorm.DB, username, exceptUserID string) (bool, error)
	Update(db *gorm.DB, user *models.User) error
	UpdateFields(db *gorm.DB, userID string, fields map[string]interface{}) error
	Delete(db *gorm.DB, userID string) error

	// Admin operations
	FindWithFilter(db *gorm.DB, filter UserFilter) ([]models.User, int64, error)
	CountByStatus(db *gorm.DB) (map[string]int64, error)

	// Campaign audiences
	AllEmails(db *gorm.DB) ([]Recipient, error)
	StudioOwnerEmails(db *gorm.DB) ([]Recipient, error)
}

type UserFilter struct {
	Role   models.UserRole
	Status models.UserStatus
	Search string
	Pagination
}

// Recipient is an email audience member.
type Recipient struct {
	UserID *string
	Email  string
	Name   string
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExists
	}
	if err := db.Create(user).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.Preload("Studio").Preload("Subscription").First(&user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// FindAccess loads only the columns the auth middleware checks.
func (r *UserRepositoryImpl) FindAccess(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.Select("id", "role", "status").First(&user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByVerificationToken(db *gorm.DB, token string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "verification_token = ? AND verification_token <> ''", token).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByResetToken(db *gorm.DB, token string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "reset_token = ? AND reset_token <> '' AND reset_token_expires_at > ?", token, time.Now().UTC()).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// UsernameTaken checks both reserved usernames and studio profiles, since a
// studio keeps its username even after the owner changes theirs.
func (r *UserRepositoryImpl) UsernameTaken(db *gorm.DB, username, exceptUserID string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptUserID).
		Count(&count).Error
	if err != nil || count > 0 {
		return count > 0, err
	}
	err = db.Model(&models.StudioProfile{}).
		Where("username = ? AND user_id <> ?", username, exceptUserID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepositoryImpl) Update(db *gorm.DB, user *models.User) error {
	return db.Omit("Studio", "Subscription").Save(user).Error
}

func (r *UserRepositoryImpl) UpdateFields(db *gorm.DB, userID string, fields map[string]interface{}) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user together with their studio, images, notes,
// tickets and subscription. Payments are kept for accounting.
func (r *UserRepositoryImpl) Delete(db *gorm.DB, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		studioIDs := tx.Model(&models.StudioProfile{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("studio_id IN (?)", studioIDs).Delete(&models.StudioImage{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{
			&models.StudioProfile{}, &models.AdminNote{}, &models.SupportTicket{}, &models.Subscription{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.User{}, "id = ?", userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (r *UserRepositoryImpl) FindWithFilter(db *gorm.DB, filter UserFilter) ([]models.User, int64, error) {
	query := db.Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(email) LIKE ? ESCAPE '!' OR LOWER(display_name) LIKE ? ESCAPE '!' OR LOWER(username) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := filter.Pagination.apply(query.Preload("Studio")).Order("created_at DESC").Find(&users).Error
	return users, total, err
}

func (r *UserRepositoryImpl) CountByStatus(db *gorm.DB) (map[string]int64, error) {
	return countGrouped(db.Model(&models.User{}), "status")
}

func (r *UserRepositoryImpl) AllEmails(db *gorm.DB) ([]Recipient, error) {
	var users []models.User
	if err := db.Select("id", "email", "display_name").Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return usersToRecipients(users), nil
}

func (r *UserRepositoryImpl) StudioOwnerEmails(db *gorm.DB) ([]Recipient, error) {
	var users []models.User
	err := db.Select("users.id", "users.email", "users.display_name").
		Joins("JOIN studio_profiles ON studio_profiles.user_id = users.id").
		Where("studio_profiles.status = ?", models.StudioStatusActive).
		Order("users.created_at").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return usersToRecipients(users), nil
}

func usersToRecipients(users []models.User) []Recipient {
	out := make([]Recipient, 0, len(users))
	for i := range users {
		id := users[i].ID
		out = append(out, Recipient{UserID: &id, Email: users[i].Email, Name: users[i].DisplayName})
	}
	return out
}

type groupCount struct {
	GroupKey string
	Count    int64
}

// countGrouped runs SELECT col, COUNT(*) ... GROUP BY col on query.
func countGrouped(query *gorm.DB, column string) (map[string]int64, error) {
	var rows []groupCount
	err := query.Select(column + " AS group_key, COUNT(*) AS count").Group(column).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.GroupKey] = row.Count
	}
	return out, nil
}
