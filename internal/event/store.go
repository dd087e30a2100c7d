package event

import (
	"context"

	"eventhub/pkg/domain"
)

// Store persists events. Implementations return sentinel errors for store
// facts; services translate them into coded domain errors.
type Store interface {
	Create(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id domain.EventID) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id domain.EventID) error
}
