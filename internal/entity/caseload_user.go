package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseLoadUser is a client on a staff member's case load.
type CaseLoadUser struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FirstName string         `gorm:"size:35;not null" json:"first_name"`
	LastName  string         `gorm:"size:35;not null" json:"last_name"`
	Email     string         `gorm:"size:254" json:"email"`
	Phone     *string        `gorm:"size:10" json:"phone"`
	Notes     string         `gorm:"size:1000" json:"notes"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *CaseLoadUser) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// PhoneNumber returns the phone or "" while it is still unset.
func (c *CaseLoadUser) PhoneNumber() string {
	if c.Phone == nil {
		return ""
	}
	return *c.Phone
}

// OwnedBy reports whether userID is the staff member responsible for the client.
func (c *CaseLoadUser) OwnedBy(userID uuid.UUID) bool {
	return c.UserID != nil && *c.UserID == userID
}
