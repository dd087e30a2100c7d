package handler

import (
	"time"

	"eventhub/internal/feedback"
)

// FeedbackResponse is the wire shape for a single feedback entry.
type FeedbackResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListFeedbackResponse wraps the feedback collection.
type ListFeedbackResponse struct {
	Feedbacks []FeedbackResponse `json:"feedbacks"`
}

// FromFeedback maps a feedback entry onto its wire shape.
func FromFeedback(f *feedback.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.ID.String(),
		EventID:   f.EventID.String(),
		UserID:    f.StudentID.String(),
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

// FromFeedbackList maps a collection, never returning a nil slice.
func FromFeedbackList(list []*feedback.Feedback) ListFeedbackResponse {
	out := make([]FeedbackResponse, 0, len(list))
	for _, f := range list {
		out = append(out, FromFeedback(f))
	}
	return ListFeedbackResponse{Feedbacks: out}
}
