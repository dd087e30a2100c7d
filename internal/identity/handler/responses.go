package handler

import (
	"time"

	"eventhub/internal/identity"
	"eventhub/internal/identity/service"
)

// UserResponse is the wire shape for an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is the wire shape for a signed-in session.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// FromUser maps the account onto its wire shape.
func FromUser(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}

// FromAuthResult maps a session onto its wire shape.
func FromAuthResult(r *service.AuthResult) AuthResponse {
	return AuthResponse{User: FromUser(r.User), Token: r.Token}
}
