package dto

import "time"

type CreateResourceRequest struct {
	Name            string `json:"name" form:"name" binding:"required,max=100"`
	Description     string `json:"description" form:"description" binding:"max=1000"`
	Hours           string `json:"hours" form:"hours" binding:"max=1000"`
	Email           string `json:"email" form:"email" binding:"omitempty,email,max=254"`
	Phone           string `json:"phone" form:"phone" binding:"omitempty,digits10"`
	Street          string `json:"street" form:"street" binding:"max=100"`
	StreetSecondary string `json:"street_secondary" form:"street_secondary" binding:"max=100"`
	City            string `json:"city" form:"city" binding:"max=100"`
	ZipCode         string `json:"zip_code" form:"zip_code" binding:"max=10"`
	State           string `json:"state" form:"state" binding:"omitempty,state"`
	URL             string `json:"url" form:"url" binding:"omitempty,url,max=200"`
	ContactName     string `json:"contact_name" form:"contact_name" binding:"max=100"`
	ContactPosition string `json:"contact_position" form:"contact_position" binding:"max=100"`
	FaxNumber       string `json:"fax_number" form:"fax_number" binding:"omitempty,digits10"`
	ContactEmail    string `json:"contact_email" form:"contact_email" binding:"omitempty,email,max=254"`
	TagIDs          []uint `json:"tag_ids" form:"tag_ids"`
}

type UpdateResourceRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=100"`
	Description     *string `json:"description" binding:"omitempty,max=1000"`
	Hours           *string `json:"hours" binding:"omitempty,max=1000"`
	Email           *string `json:"email" binding:"omitempty,email,max=254"`
	Phone           *string `json:"phone" binding:"omitempty,digits10"`
	Street          *string `json:"street" binding:"omitempty,max=100"`
	StreetSecondary *string `json:"street_secondary" binding:"omitempty,max=100"`
	City            *string `json:"city" binding:"omitempty,max=100"`
	ZipCode         *string `json:"zip_code" binding:"omitempty,max=10"`
	State           *string `json:"state" binding:"omitempty,state"`
	URL             *string `json:"url" binding:"omitempty,url,max=200"`
	IsActive        *bool   `json:"is_active"`
	ContactName     *string `json:"contact_name" binding:"omitempty,max=100"`
	ContactPosition *string `json:"contact_position" binding:"omitempty,max=100"`
	FaxNumber       *string `json:"fax_number" binding:"omitempty,digits10"`
	ContactEmail    *string `json:"contact_email" binding:"omitempty,email,max=254"`
	TagIDs          *[]uint `json:"tag_ids"`
}

type ResourceFilter struct {
	TagID  uint   `form:"tag_id"`
	Search string `form:"search"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type TagSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ResourceResponse struct {
	ID              uint         `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Hours           string       `json:"hours"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	Street          string       `json:"street"`
	StreetSecondary string       `json:"street_secondary"`
	City            string       `json:"city"`
	ZipCode         string       `json:"zip_code"`
	State           string       `json:"state"`
	URL             string       `json:"url"`
	HasImage        bool         `json:"has_image"`
	Clicks          int          `json:"clicks"`
	IsActive        bool         `json:"is_active"`
	ContactName     string       `json:"contact_name"`
	ContactPosition string       `json:"contact_position"`
	FaxNumber       string       `json:"fax_number"`
	ContactEmail    string       `json:"contact_email"`
	Tags            []TagSummary `json:"tags"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
