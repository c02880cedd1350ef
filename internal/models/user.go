package models

import "time"

type User struct {
	BaseModel
	Email               string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash        string         `gorm:"not null" json:"-"`
	DisplayName         string         `gorm:"not null" json:"display_name"`
	Username            *string        `gorm:"uniqueIndex" json:"username,omitempty"`
	Role                UserRole       `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Status              UserStatus     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	MembershipTier      MembershipTier `gorm:"type:varchar(20);not null;default:'BASIC'" json:"membership_tier"`
	EmailVerified       bool           `gorm:"default:false" json:"email_verified"`
	VerificationToken   string         `gorm:"index" json:"-"`
	ResetToken          string         `gorm:"index" json:"-"`
	ResetTokenExpiresAt *time.Time     `json:"-"`

	Studio       *StudioProfile `gorm:"foreignKey:UserID" json:"studio,omitempty"`
	Subscription *Subscription  `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
}

// UsernameValue returns the reserved username or "".
func (u *User) UsernameValue() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

type AdminNote struct {
	BaseModel
	UserID   string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	AuthorID string `gorm:"type:varchar(36);not null" json:"author_id"`
	Content  string `gorm:"type:text;not null" json:"content"`
}
