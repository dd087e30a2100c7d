package handler

import (
	"time"

	"eventhub/internal/event"
)

// EventResponse is the wire shape for a single event.
type EventResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Schedule    time.Time `json:"schedule"`
	Capacity    int       `json:"capacity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListEventsResponse wraps the event collection.
type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
}

// FromEvent maps the aggregate onto its wire shape.
func FromEvent(e *event.Event) EventResponse {
	return EventResponse{
		ID:          e.ID.String(),
		OwnerID:     e.OwnerID.String(),
		Title:       e.Title,
		Description: e.Description,
		Schedule:    e.Schedule,
		Capacity:    e.Capacity,
		Status:      e.Status.String(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// FromEvents maps a collection, never returning a nil slice so clients
// always see a JSON array.
func FromEvents(events []*event.Event) ListEventsResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, FromEvent(e))
	}
	return ListEventsResponse{Events: out}
}
