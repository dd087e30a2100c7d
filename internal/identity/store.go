package identity

import (
	"context"

	"eventhub/pkg/domain"
)

// Store persists user accounts. Email lookups are case-insensitive;
// implementations store emails lowercased.
type Store interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id domain.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
