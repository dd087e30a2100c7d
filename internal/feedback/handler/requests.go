package handler

// SubmitFeedbackRequest is the body for POST /feedbacks.
type SubmitFeedbackRequest struct {
	EventID string `json:"eventId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
