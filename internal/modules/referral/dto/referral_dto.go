package dto

import "time"

type CreateReferralRequest struct {
	CaseUserID  uint   `json:"case_user_id" binding:"required"`
	ResourceIDs []uint `json:"resource_ids" binding:"required,min=1,dive,required"`
	Notes       string `json:"notes" binding:"required,max=1000"`
}

type ReferralFilter struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type ResourceSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ReferralResponse struct {
	ID           uint              `json:"id"`
	ReferralDate time.Time         `json:"referral_date"`
	DateAccessed *time.Time        `json:"date_accessed"`
	Notes        string            `json:"notes"`
	StaffID      *string           `json:"staff_id"`
	StaffName    string            `json:"staff_name"`
	CaseUserID   *uint             `json:"case_user_id"`
	ClientName   string            `json:"client_name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Resources    []ResourceSummary `json:"resources"`
}

type DeliveryStatus struct {
	Channel   string `json:"channel"`
	Status    string `json:"status"`
	Recipient string `json:"recipient,omitempty"`
}

type CreateReferralResponse struct {
	Referral ReferralResponse `json:"referral"`
	Delivery []DeliveryStatus `json:"delivery"`
}
