package handler

import (
	"time"

	"eventhub/internal/event"
	dErrors "eventhub/pkg/domain-errors"
)

// CreateEventRequest is the body for POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Schedule    time.Time `json:"schedule"`
	Capacity    int       `json:"capacity"`
}

// TransitionRequest is the body for POST /events/{id}/transition.
type TransitionRequest struct {
	Status string `json:"status"`
}

// ParsedStatus validates the target status against the lifecycle enum.
func (r TransitionRequest) ParsedStatus() (event.Status, error) {
	if r.Status == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "status is required")
	}
	return event.ParseStatus(r.Status)
}

// CapacityRequest is the body for PATCH /events/{id}/capacity.
type CapacityRequest struct {
	Capacity *int `json:"capacity"`
}
