package identity

import (
	"time"

	"eventhub/pkg/domain"
)

// User is an account on the platform. PasswordHash never crosses the wire.
type User struct {
	ID           domain.UserID `json:"id"`
	Email        string        `json:"email"`
	FullName     string        `json:"fullName"`
	Role         domain.Role   `json:"role"`
	PasswordHash []byte        `json:"-"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Actor is the user's authorization identity.
func (u *User) Actor() domain.Actor {
	return domain.Actor{UserID: u.ID, Role: u.Role}
}
