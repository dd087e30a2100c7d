package registration

import (
	"time"

	"eventhub/pkg/domain"
)

// State is the lifecycle of a registration.
type State string

const (
	StateConfirmed  State = "confirmed"
	StateWaitlisted State = "waitlisted"
	StateCancelled  State = "cancelled"
)

// IsLive reports whether the registration still holds or queues for a seat.
func (s State) IsLive() bool {
	return s == StateConfirmed || s == StateWaitlisted
}

func (s State) String() string { return string(s) }

// Registration ties a student to an event.
//
// Invariants (enforced by the service under the per-event lock):
//   - at most one live registration per (event, student) pair
//   - confirmed registrations never exceed the event capacity
//   - waitlist positions are contiguous from 1 in arrival order
//   - Position is zero unless the state is waitlisted
type Registration struct {
	ID           domain.RegistrationID `json:"id"`
	EventID      domain.EventID        `json:"eventId"`
	StudentID    domain.UserID         `json:"userId"`
	State        State                 `json:"state"`
	Position     int                   `json:"position,omitempty"`
	RegisteredAt time.Time             `json:"registeredAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// Confirm seats the registration, clearing any waitlist position.
func (r *Registration) Confirm(now time.Time) {
	r.State = StateConfirmed
	r.Position = 0
	r.UpdatedAt = now
}

// Cancel releases the registration. Idempotence is handled by the service,
// which never calls this on an already cancelled registration.
func (r *Registration) Cancel(now time.Time) {
	r.State = StateCancelled
	r.Position = 0
	r.UpdatedAt = now
}
