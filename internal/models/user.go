// internal/models/user.go
package models

import "time"

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          UserRole  `json:"role"`
	Phone         string    `json:"phone,omitempty"`
	PhoneVerified bool      `json:"phoneVerified"`
	Avatar        string    `json:"avatar,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

func (u *User) IsSeller() bool {
	return u != nil && (u.Role == UserRoleSeller || u.Role == UserRoleAdmin)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=6"`
	Name          string   `json:"name" validate:"required,min=2,max=50"`
	Role          UserRole `json:"role" validate:"required,signup_role"`
	Phone         string   `json:"phone" validate:"required,kr_phone"`
	PhoneVerified bool     `json:"phoneVerified"`
}

type UpdateProfileRequest struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Avatar string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// AuthResponse is returned by login, signup and refresh.
type AuthResponse struct {
	User         *User  `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type VerificationCodeResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
	// Code is only echoed by development backends.
	Code string `json:"code,omitempty"`
}
