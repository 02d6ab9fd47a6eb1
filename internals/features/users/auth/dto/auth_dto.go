package dto

import (
	"time"

	userDTO "thesis_backend/internals/features/users/user/dto"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	UserName string `json:"user_name" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=student teacher"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

// CreateUserRequest: dipakai admin, semua role diperbolehkan.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	UserName string `json:"user_name" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=student teacher admin uniadmin"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

type LoginRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type LoginResponse struct {
	AccessToken string               `json:"access_token"`
	ExpiresAt   time.Time            `json:"expires_at"`
	User        userDTO.UserResponse `json:"user"`
}
