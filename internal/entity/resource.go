package entity

import "time"

// Resource is a community service listing.
type Resource struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"size:100;not null" json:"name"`
	Description     string     `gorm:"size:1000" json:"description"`
	Hours           string     `gorm:"size:1000;not null;default:''" json:"hours"`
	Email           string     `gorm:"size:254" json:"email"`
	Phone           string     `gorm:"size:10" json:"phone"`
	Street          string     `gorm:"size:100" json:"street"`
	StreetSecondary string     `gorm:"size:100;not null;default:''" json:"street_secondary"`
	City            string     `gorm:"size:100;not null;default:'Pittsburgh'" json:"city"`
	ZipCode         string     `gorm:"size:10" json:"zip_code"`
	State           string     `gorm:"size:2;not null;default:'PA'" json:"state"`
	ImageURL        *string    `gorm:"type:text" json:"image_url,omitempty"`
	ContentType     string     `gorm:"size:50" json:"content_type,omitempty"`
	URL             string     `gorm:"size:200" json:"url"`
	Clicks          int        `gorm:"not null;default:0" json:"clicks"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	ContactName     string     `gorm:"size:100" json:"contact_name"`
	ContactPosition string     `gorm:"size:100" json:"contact_position"`
	FaxNumber       string     `gorm:"size:10" json:"fax_number"`
	ContactEmail    string     `gorm:"size:254" json:"contact_email"`
	Tags            []Tag      `gorm:"many2many:resource_tags;" json:"tags,omitempty"`
	Referrals       []Referral `gorm:"many2many:referral_resources;" json:"-"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Tag is a label attachable to many resources.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:20;uniqueIndex;not null" json:"name"`
}
