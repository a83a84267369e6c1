package dto

import (
	"time"

	"github.com/google/uuid"
)

// Auth Request DTOs

// RegisterRequest contains user registration data
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=6,max=180"`
	Password        string `json:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest contains login credentials
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest contains refresh token for renewal
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Auth Response DTOs

type RegisterResponse struct {
	Message  string    `json:"message"`
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// TokenResponse contains authentication tokens
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
