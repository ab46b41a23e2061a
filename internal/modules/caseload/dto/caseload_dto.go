package dto

type CreateClientRequest struct {
	FirstName string `json:"first_name" binding:"required,max=35"`
	LastName  string `json:"last_name" binding:"required,max=35"`
	Email     string `json:"email" binding:"omitempty,email,max=254"`
	Phone     string `json:"phone" binding:"omitempty,digits10"`
	Notes     string `json:"notes" binding:"max=1000"`
	// StaffID assigns the client to another staff member; admins only.
	StaffID string `json:"staff_id" binding:"omitempty,uuid"`
}

type UpdateClientRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=35"`
	LastName  *string `json:"last_name" binding:"omitempty,max=35"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	Phone     *string `json:"phone" binding:"omitempty,digits10"`
	Notes     *string `json:"notes" binding:"omitempty,max=1000"`
	IsActive  *bool   `json:"is_active"`
}

type ClientResponse struct {
	ID        uint    `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	Notes     string  `json:"notes"`
	IsActive  bool    `json:"is_active"`
	StaffID   *string `json:"staff_id"`
	StaffName string  `json:"staff_name,omitempty"`
}

type RecipientOption struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	HasEmail bool   `json:"has_email"`
	HasPhone bool   `json:"has_phone"`
}
