package registration

import (
	"context"

	"eventhub/pkg/domain"
)

// Store persists registrations. Implementations return sentinel errors;
// the service translates them into coded domain errors.
//
// Mutating calls happen under the per-event lock, so implementations do
// not need to serialize writers for the same event themselves.
type Store interface {
	Create(ctx context.Context, reg *Registration) error
	FindByID(ctx context.Context, id domain.RegistrationID) (*Registration, error)

	// FindLive returns the confirmed or waitlisted registration for the
	// (event, student) pair, or sentinel.ErrNotFound.
	FindLive(ctx context.Context, eventID domain.EventID, studentID domain.UserID) (*Registration, error)

	// ListByEvent returns all registrations for an event in arrival order,
	// cancelled ones included.
	ListByEvent(ctx context.Context, eventID domain.EventID) ([]*Registration, error)

	// ListByStudent returns all registrations of a student in arrival order.
	ListByStudent(ctx context.Context, studentID domain.UserID) ([]*Registration, error)

	ConfirmedCount(ctx context.Context, eventID domain.EventID) (int, error)
	WaitlistCount(ctx context.Context, eventID domain.EventID) (int, error)

	Update(ctx context.Context, reg *Registration) error

	// FirstWaitlisted returns the waitlisted registration at position 1,
	// or sentinel.ErrNotFound when the waitlist is empty.
	FirstWaitlisted(ctx context.Context, eventID domain.EventID) (*Registration, error)

	// ShiftWaitlist decrements the position of every waitlisted
	// registration behind the vacated position, restoring contiguity.
	ShiftWaitlist(ctx context.Context, eventID domain.EventID, vacatedPosition int) error
}
