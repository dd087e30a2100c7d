package feedback

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
)

const (
	minRating      = 1
	maxRating      = 5
	maxCommentSize = 2000
)

// Feedback is a rating left by an attendee after an event completes.
type Feedback struct {
	ID        uuid.UUID      `json:"id"`
	EventID   domain.EventID `json:"eventId"`
	StudentID domain.UserID  `json:"userId"`
	Rating    int            `json:"rating"`
	Comment   string         `json:"comment,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// New validates and constructs a feedback entry.
func New(eventID domain.EventID, studentID domain.UserID, rating int, comment string, now time.Time) (*Feedback, error) {
	if rating < minRating || rating > maxRating {
		return nil, dErrors.New(dErrors.CodeValidation, "rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentSize {
		return nil, dErrors.New(dErrors.CodeValidation, "comment is too long")
	}
	return &Feedback{
		ID:        uuid.New(),
		EventID:   eventID,
		StudentID: studentID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
	}, nil
}
