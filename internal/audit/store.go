package audit

import (
	"context"

	"eventhub/pkg/domain"
)

// Store is the append-only audit sink. Append runs inside the caller's
// transaction when one is carried in the context, so an entry and the
// mutation it records commit or roll back together.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
	ListByActor(ctx context.Context, actorID domain.UserID, limit int) ([]Entry, error)
	ListByTarget(ctx context.Context, targetType TargetType, targetID string, limit int) ([]Entry, error)
}
