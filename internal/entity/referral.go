package entity

import (
	"time"

	"github.com/google/uuid"
)

// Referral records one notification sent to one client about a set of resources.
// ReferralDate never changes after insert; DateAccessed is set at most once.
type Referral struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Email        string        `gorm:"size:254;not null;default:''" json:"email"`
	Phone        string        `gorm:"size:10;not null;default:''" json:"phone"`
	ReferralDate time.Time     `gorm:"not null;index" json:"referral_date"`
	DateAccessed *time.Time    `json:"date_accessed"`
	Notes        string        `gorm:"size:1000" json:"notes"`
	UserID       *uuid.UUID    `gorm:"type:uuid;index" json:"user_id"`
	User         *User         `gorm:"constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	CaseUserID   *uint         `gorm:"index" json:"case_user_id"`
	CaseUser     *CaseLoadUser `gorm:"foreignKey:CaseUserID;constraint:OnDelete:RESTRICT" json:"case_user,omitempty"`
	Resources    []Resource    `gorm:"many2many:referral_resources;" json:"resources"`
}

// ReferralResource is the join row between a referral and one of its resources.
type ReferralResource struct {
	ReferralID uint `gorm:"primaryKey"`
	ResourceID uint `gorm:"primaryKey"`
}

func (ReferralResource) TableName() string {
	return "referral_resources"
}

func (r *Referral) ResourceNames() []string {
	names := make([]string, 0, len(r.Resources))
	for _, res := range r.Resources {
		names = append(names, res.Name)
	}
	return names
}

func (r *Referral) Accessed() bool {
	return r.DateAccessed != nil
}
