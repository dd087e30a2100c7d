package feedback

import (
	"context"

	"eventhub/pkg/domain"
)

// Store persists feedback. One entry per (event, student).
type Store interface {
	Create(ctx context.Context, fb *Feedback) error
	ListByEvent(ctx context.Context, eventID domain.EventID) ([]*Feedback, error)
	FindByEventAndStudent(ctx context.Context, eventID domain.EventID, studentID domain.UserID) (*Feedback, error)
}
