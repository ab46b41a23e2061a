package dto

import "newera.app/reentry/internal/entity"

type LoginInput struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
}

const (
	UserTypeAdmin = "admin"
	UserTypeStaff = "staff"
)

type RegisterUserInput struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Password  string `json:"password" binding:"required,min=8"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required,digits10"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	UserType  string `json:"user_type" binding:"omitempty,oneof=admin staff"`
}

type SetActiveInput struct {
	Active *bool `json:"active" binding:"required"`
}

type StaffListResponse struct {
	Admins []*entity.User `json:"admins"`
	Staff  []*entity.User `json:"staff"`
}
