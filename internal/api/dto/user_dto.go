package dto

import (
	"time"

	"github.com/helpr-dev/helpr/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SetRoleRequest payload for admin/mentor flag changes.
type SetRoleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// UserResponse is the wire representation of a user.
type UserResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	IsAdmin         bool      `json:"is_admin"`
	IsMentor        bool      `json:"is_mentor"`
	IsSilenced      bool      `json:"is_silenced"`
	OpenedTicketID  *string   `json:"opened_ticket_id,omitempty"`
	ClaimedTicketID *string   `json:"claimed_ticket_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewUserResponse maps a domain user to its wire shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		Name:            user.Name,
		IsAdmin:         user.IsAdmin,
		IsMentor:        user.IsMentor,
		IsSilenced:      user.IsSilenced,
		OpenedTicketID:  user.OpenedTicketID,
		ClaimedTicketID: user.ClaimedTicketID,
		CreatedAt:       user.CreatedAt,
	}
}
