package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eventhub/internal/audit"
	"eventhub/internal/event"
	"eventhub/internal/feedback"
	"eventhub/internal/registration"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/tx"
	"eventhub/pkg/requestcontext"
)

type FeedbackServiceSuite struct {
	suite.Suite

	ctx     context.Context
	now     time.Time
	events  *event.InMemoryStore
	regs    *registration.InMemoryStore
	store   *feedback.InMemoryStore
	svc     *Service
	student domain.Actor
}

func TestFeedbackServiceSuite(t *testing.T) {
	suite.Run(t, new(FeedbackServiceSuite))
}

func (s *FeedbackServiceSuite) SetupTest() {
	s.now = time.Date(2026, time.July, 1, 18, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.events = event.NewInMemoryStore()
	s.regs = registration.NewInMemoryStore()
	s.store = feedback.NewInMemoryStore()
	s.svc = New(s.store, s.events, s.regs, tx.NopRunner{}, audit.NewPublisher(audit.NewInMemoryStore()))
	s.student = domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleStudent}
}

func (s *FeedbackServiceSuite) makeEvent(status event.Status) *event.Event {
	ev := &event.Event{
		ID:        domain.NewEventID(),
		OwnerID:   domain.NewUserID(),
		Title:     "Closing Ceremony",
		Schedule:  s.now.Add(-24 * time.Hour),
		Capacity:  100,
		Status:    status,
		CreatedAt: s.now.Add(-48 * time.Hour),
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.events.Create(s.ctx, ev))
	return ev
}

func (s *FeedbackServiceSuite) attend(ev *event.Event, student domain.UserID, state registration.State) {
	s.Require().NoError(s.regs.Create(s.ctx, &registration.Registration{
		ID:           domain.NewRegistrationID(),
		EventID:      ev.ID,
		StudentID:    student,
		State:        state,
		RegisteredAt: s.now.Add(-36 * time.Hour),
		UpdatedAt:    s.now.Add(-36 * time.Hour),
	}))
}

func (s *FeedbackServiceSuite) TestSubmitHappyPath() {
	ev := s.makeEvent(event.StatusCompleted)
	s.attend(ev, s.student.UserID, registration.StateConfirmed)

	fb, err := s.svc.Submit(s.ctx, s.student, ev.ID, 4, "great talks")
	s.Require().NoError(err)
	s.Equal(4, fb.Rating)
	s.Equal(s.student.UserID, fb.StudentID)

	list, err := s.svc.ListForEvent(s.ctx, ev.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *FeedbackServiceSuite) TestSubmitRequiresCompletedEvent() {
	for _, status := range []event.Status{event.StatusPublished, event.StatusActive, event.StatusCancelled} {
		s.Run(string(status), func() {
			ev := s.makeEvent(status)
			s.attend(ev, s.student.UserID, registration.StateConfirmed)

			_, err := s.svc.Submit(s.ctx, s.student, ev.ID, 5, "")
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		})
	}
}

func (s *FeedbackServiceSuite) TestSubmitRequiresConfirmedSeat() {
	ev := s.makeEvent(event.StatusCompleted)

	_, err := s.svc.Submit(s.ctx, s.student, ev.ID, 5, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	waitlisted := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleStudent}
	s.attend(ev, waitlisted.UserID, registration.StateWaitlisted)
	_, err = s.svc.Submit(s.ctx, waitlisted, ev.ID, 5, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *FeedbackServiceSuite) TestSubmitOncePerEvent() {
	ev := s.makeEvent(event.StatusCompleted)
	s.attend(ev, s.student.UserID, registration.StateConfirmed)

	_, err := s.svc.Submit(s.ctx, s.student, ev.ID, 3, "")
	s.Require().NoError(err)

	_, err = s.svc.Submit(s.ctx, s.student, ev.ID, 5, "changed my mind")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *FeedbackServiceSuite) TestSubmitValidatesRating() {
	ev := s.makeEvent(event.StatusCompleted)
	s.attend(ev, s.student.UserID, registration.StateConfirmed)

	for _, rating := range []int{0, 6, -1} {
		_, err := s.svc.Submit(s.ctx, s.student, ev.ID, rating, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	}
}

func (s *FeedbackServiceSuite) TestAdminsCannotSubmit() {
	ev := s.makeEvent(event.StatusCompleted)
	admin := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}

	_, err := s.svc.Submit(s.ctx, admin, ev.ID, 5, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAuthz))
}
