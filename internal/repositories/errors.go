package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrStudioNotFound       = errors.New("studio not found")
	ErrImageNotFound        = errors.New("image not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrNoteNotFound         = errors.New("note not found")
	ErrWaitlistNotFound     = errors.New("waitlist entry not found")
	ErrDuplicate            = errors.New("duplicate record")
)

// notFound maps gorm's missing-row error to a repository sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// IsUniqueViolation recognises unique constraint failures from PostgreSQL
// and SQLite drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

// Pagination is the common page/page_size pair.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) apply(q *gorm.DB) *gorm.DB {
	page, size := p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return q.Offset((page - 1) * size).Limit(size)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a lowercase substring pattern for
// LOWER(col) LIKE ? ESCAPE '!'. Wildcards in s match literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
