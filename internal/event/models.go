package event

import (
	"strings"
	"time"

	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
)

// Status is the publication lifecycle of an event. The enumeration is part
// of the wire contract and must stay verbatim.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// legalTransitions encodes the monotonic lifecycle. Cancellation is
// reachable from every non-terminal state; nothing leaves a terminal one.
var legalTransitions = map[Status]map[Status]bool{
	StatusDraft:     {StatusPublished: true, StatusCancelled: true},
	StatusPublished: {StatusActive: true, StatusCancelled: true},
	StatusActive:    {StatusCompleted: true, StatusCancelled: true},
}

// ParseStatus validates external input against the enumeration.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPublished, StatusActive, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "invalid event status")
}

// CanTransitionTo reports whether the move is legal.
func (s Status) CanTransitionTo(target Status) bool {
	return legalTransitions[s][target]
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsOpen reports whether students may register.
func (s Status) IsOpen() bool {
	return s == StatusPublished || s == StatusActive
}

func (s Status) String() string { return string(s) }

// Event is the aggregate root for a schedulable campus activity.
//
// Invariants:
//   - Capacity >= 0
//   - Status transitions follow legalTransitions; cancelled is reachable
//     from any non-terminal state
//   - OwnerID is the college-admin that created the event, immutable
//   - Capacity is frozen once the event goes active, so in-flight
//     admission counts stay valid
type Event struct {
	ID          domain.EventID `json:"id"`
	OwnerID     domain.UserID  `json:"ownerId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Schedule    time.Time      `json:"schedule"`
	Capacity    int            `json:"capacity"`
	Status      Status         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// New validates draft fields and constructs an Event in status draft.
func New(id domain.EventID, ownerID domain.UserID, title, description string, schedule time.Time, capacity int, now time.Time) (*Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title cannot be empty")
	}
	if capacity < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "capacity cannot be negative")
	}
	if !schedule.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "schedule must be in the future")
	}
	return &Event{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Schedule:    schedule,
		Capacity:    capacity,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CanTransition checks the move without applying it. Use with
// ApplyTransition inside the serialized critical section.
func (e *Event) CanTransition(target Status) error {
	if !e.Status.CanTransitionTo(target) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"cannot transition event from "+e.Status.String()+" to "+target.String())
	}
	return nil
}

// ApplyTransition moves the event to target. Call CanTransition first.
func (e *Event) ApplyTransition(target Status, now time.Time) {
	e.Status = target
	e.UpdatedAt = now
}

// CanUpdateCapacity checks the capacity edit is still allowed. Capacity is
// locked once the event is active so admission counts are never
// invalidated mid-flight.
func (e *Event) CanUpdateCapacity(newCapacity int) error {
	if newCapacity < 0 {
		return dErrors.New(dErrors.CodeValidation, "capacity cannot be negative")
	}
	if e.Status != StatusDraft && e.Status != StatusPublished {
		return dErrors.New(dErrors.CodeCapacityLocked,
			"capacity is locked once the event is "+e.Status.String())
	}
	return nil
}

// ApplyCapacity sets the new capacity. Call CanUpdateCapacity first; the
// service additionally checks confirmed demand under the event lock.
func (e *Event) ApplyCapacity(newCapacity int, now time.Time) {
	e.Capacity = newCapacity
	e.UpdatedAt = now
}
