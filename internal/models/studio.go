package models

import (
	"time"

	"gorm.io/datatypes"
)

type StudioProfile struct {
	BaseModel
	UserID      string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	Username    string         `gorm:"uniqueIndex;not null" json:"username"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	StudioTypes datatypes.JSON `json:"studio_types"`
	Equipment   datatypes.JSON `json:"equipment"`
	Services    datatypes.JSON `json:"services"`
	Address     string         `json:"address"`
	City        string         `gorm:"index" json:"city"`
	Country     string         `json:"country"`
	Latitude    *float64       `json:"latitude,omitempty"`
	Longitude   *float64       `json:"longitude,omitempty"`
	Website     string         `json:"website"`
	Phone       string         `json:"phone"`
	RateText    string         `json:"rate_text"`

	Status                StudioStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	IsVisible             bool         `gorm:"default:false" json:"is_visible"`
	IsVerified            bool         `gorm:"default:false" json:"is_verified"`
	IsFeatured            bool         `gorm:"default:false;index" json:"is_featured"`
	FeaturedUntil         *time.Time   `json:"featured_until,omitempty"`
	MembershipExpiresAt   *time.Time   `json:"membership_expires_at,omitempty"`
	RenewalReminderSentAt *time.Time   `json:"-"`

	Images []StudioImage `gorm:"foreignKey:StudioID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// IsPublic reports whether the studio may be shown to anonymous visitors.
func (s *StudioProfile) IsPublic() bool {
	return s.Status == StudioStatusActive && s.IsVisible
}

type StudioImage struct {
	BaseModel
	StudioID  string `gorm:"type:varchar(36);not null;index" json:"studio_id"`
	URL       string `gorm:"not null" json:"url"`
	PublicID  string `json:"public_id"`
	AltText   string `json:"alt_text"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
}
