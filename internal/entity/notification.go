package entity

import (
	"time"

	"github.com/google/uuid"
)

const NotificationReferralAccessed = "referral_accessed"

// Notification is an in-app message for a staff member.
type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ReferralID uint      `gorm:"not null" json:"referral_id"`
	ResourceID uint      `json:"resource_id"`
	Type       string    `gorm:"type:varchar(50);not null" json:"type"`
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
