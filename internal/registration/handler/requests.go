package handler

// CreateRegistrationRequest is the body for POST /registrations.
type CreateRegistrationRequest struct {
	EventID string `json:"eventId"`
}

// CancelRegistrationRequest is the body for POST /registrations/{id}/cancel.
// Reason is mandatory when an admin cancels on a student's behalf.
type CancelRegistrationRequest struct {
	Reason string `json:"reason"`
}
