package handler

import (
	"time"

	"eventhub/internal/registration"
)

// RegistrationResponse is the wire shape for a single registration.
type RegistrationResponse struct {
	ID           string    `json:"id"`
	EventID      string    `json:"eventId"`
	UserID       string    `json:"userId"`
	State        string    `json:"state"`
	Position     int       `json:"position,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListRegistrationsResponse wraps the registration collection.
type ListRegistrationsResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
}

// FromRegistration maps the aggregate onto its wire shape.
func FromRegistration(r *registration.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:           r.ID.String(),
		EventID:      r.EventID.String(),
		UserID:       r.StudentID.String(),
		State:        r.State.String(),
		Position:     r.Position,
		RegisteredAt: r.RegisteredAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// FromRegistrations maps a collection, never returning a nil slice.
func FromRegistrations(regs []*registration.Registration) ListRegistrationsResponse {
	out := make([]RegistrationResponse, 0, len(regs))
	for _, r := range regs {
		out = append(out, FromRegistration(r))
	}
	return ListRegistrationsResponse{Registrations: out}
}
