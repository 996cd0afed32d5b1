package auth

import (
	"github.com/angelmondragon/pawfinderz-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token and user produced by a successful login.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	User        *users.UserDTO `json:"user"`
}

// RegisterRequest contains the payload required for onboarding a new user.
type RegisterRequest struct {
	DisplayName string  `json:"display_name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	Phone       *string `json:"phone,omitempty"`
}

// RegisterResponse returns the created user.
type RegisterResponse struct {
	User *users.UserDTO `json:"user"`
}
