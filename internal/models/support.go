package models

type SupportTicket struct {
	BaseModel
	UserID        string         `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Type          TicketType     `gorm:"type:varchar(20);not null" json:"type"`
	Subject       string         `gorm:"not null" json:"subject"`
	Message       string         `gorm:"type:text;not null" json:"message"`
	Status        TicketStatus   `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	Priority      TicketPriority `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	AdminResponse string         `gorm:"type:text" json:"admin_response,omitempty"`
}

type WaitlistEntry struct {
	BaseModel
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
}
