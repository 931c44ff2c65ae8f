package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"user_id"`

	// Token is a bearer access token accepted by the protected endpoints
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when Token expires
	ExpiresAt string `json:"expires_at"`
}

// UpdateUsernameRequest defines the payload for renaming an account.
type UpdateUsernameRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

// UpdatePasswordRequest defines the payload for changing a password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,max=72"`
}

// UpdateProfileRequest defines the payload for setting display names.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountResponse is the public view of an account. The password hash is
// never part of it.
type AccountResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func accountToResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		UserID:    account.ID,
		Username:  account.Username,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		CreatedAt: account.CreatedAt,
	}
}

func accountsToResponse(accounts []*domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, accountToResponse(account))
	}
	return out
}
