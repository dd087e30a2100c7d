package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"eventhub/internal/audit"
	"eventhub/internal/event"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/keymutex"
	"eventhub/pkg/platform/tx"
	"eventhub/pkg/requestcontext"
)

type stubCounter struct {
	confirmed int
}

func (c *stubCounter) ConfirmedCount(context.Context, domain.EventID) (int, error) {
	return c.confirmed, nil
}

type stubCascader struct {
	calls     int
	lastEvent domain.EventID
	cancelled int
}

func (c *stubCascader) CascadeEventCancellation(_ context.Context, eventID domain.EventID, _ domain.Actor) (int, error) {
	c.calls++
	c.lastEvent = eventID
	return c.cancelled, nil
}

type EventServiceSuite struct {
	suite.Suite

	ctx      context.Context
	now      time.Time
	store    *event.InMemoryStore
	auditLog *audit.InMemoryStore
	counter  *stubCounter
	cascade  *stubCascader
	svc      *Service

	owner      domain.Actor
	otherAdmin domain.Actor
	superAdmin domain.Actor
	student    domain.Actor
}

func TestEventServiceSuite(t *testing.T) {
	suite.Run(t, new(EventServiceSuite))
}

func (s *EventServiceSuite) SetupTest() {
	s.now = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.store = event.NewInMemoryStore()
	s.auditLog = audit.NewInMemoryStore()
	s.counter = &stubCounter{}
	s.cascade = &stubCascader{}

	s.svc = New(s.store, s.counter, keymutex.New(), tx.NopRunner{}, audit.NewPublisher(s.auditLog))
	s.svc.SetCascader(s.cascade)

	s.owner = domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	s.otherAdmin = domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	s.superAdmin = domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleSuperAdmin}
	s.student = domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleStudent}
}

func (s *EventServiceSuite) createEvent(capacity int) *event.Event {
	ev, err := s.svc.Create(s.ctx, s.owner, CreateParams{
		Title:    "Robotics Workshop",
		Schedule: s.now.Add(48 * time.Hour),
		Capacity: capacity,
	})
	s.Require().NoError(err)
	return ev
}

func (s *EventServiceSuite) lastAudit() audit.Entry {
	entries, err := s.auditLog.ListRecent(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().NotEmpty(entries)
	return entries[0]
}

func (s *EventServiceSuite) TestCreateStartsAsDraft() {
	ev := s.createEvent(25)

	s.Equal(event.StatusDraft, ev.Status)
	s.Equal(s.owner.UserID, ev.OwnerID)
	s.Equal(25, ev.Capacity)

	entry := s.lastAudit()
	s.Equal(audit.ActionEventCreate, entry.Action)
	s.Equal(audit.OutcomeSuccess, entry.Outcome)
	s.Equal(ev.ID.String(), entry.TargetID)
}

func (s *EventServiceSuite) TestCreateRejectsStudents() {
	_, err := s.svc.Create(s.ctx, s.student, CreateParams{
		Title:    "Underground Mixer",
		Schedule: s.now.Add(time.Hour),
		Capacity: 10,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAuthz))

	entry := s.lastAudit()
	s.Equal(audit.OutcomeDenied, entry.Outcome)
	s.Equal(audit.ActionEventCreate, entry.Action)
}

func (s *EventServiceSuite) TestCreateValidatesDraftFields() {
	cases := []struct {
		name   string
		params CreateParams
	}{
		{"empty title", CreateParams{Title: "  ", Schedule: s.now.Add(time.Hour), Capacity: 5}},
		{"negative capacity", CreateParams{Title: "Hackathon", Schedule: s.now.Add(time.Hour), Capacity: -1}},
		{"past schedule", CreateParams{Title: "Hackathon", Schedule: s.now.Add(-time.Hour), Capacity: 5}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.svc.Create(s.ctx, s.owner, tc.params)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *EventServiceSuite) TestTransitionFollowsLifecycle() {
	ev := s.createEvent(10)

	for _, target := range []event.Status{event.StatusPublished, event.StatusActive, event.StatusCompleted} {
		updated, err := s.svc.Transition(s.ctx, s.owner, ev.ID, target)
		s.Require().NoError(err)
		s.Equal(target, updated.Status)
	}

	entry := s.lastAudit()
	s.Equal(audit.ActionEventTransition, entry.Action)
	s.Equal(string(event.StatusCompleted), entry.Reason)
}

func (s *EventServiceSuite) TestTransitionRejectsSkippedStates() {
	ev := s.createEvent(10)

	_, err := s.svc.Transition(s.ctx, s.owner, ev.ID, event.StatusActive)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	stored, err := s.svc.Get(s.ctx, ev.ID)
	s.Require().NoError(err)
	s.Equal(event.StatusDraft, stored.Status)
}

func (s *EventServiceSuite) TestTransitionOutOfTerminalStateFails() {
	ev := s.createEvent(10)
	_, err := s.svc.Transition(s.ctx, s.owner, ev.ID, event.StatusCancelled)
	s.Require().NoError(err)

	_, err = s.svc.Transition(s.ctx, s.owner, ev.ID, event.StatusPublished)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func (s *EventServiceSuite) TestNonOwnerAdminCannotTransition() {
	ev := s.createEvent(10)

	_, err := s.svc.Transition(s.ctx, s.otherAdmin, ev.ID, event.StatusPublished)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAuthz))

	entry := s.lastAudit()
	s.Equal(audit.OutcomeDenied, entry.Outcome)
	s.Equal(s.otherAdmin.UserID, entry.ActorID)
	s.Equal(ev.ID.String(), entry.TargetID)
}

func (s *EventServiceSuite) TestSuperAdminCanTransitionAnyEvent() {
	ev := s.createEvent(10)

	updated, err := s.svc.Transition(s.ctx, s.superAdmin, ev.ID, event.StatusPublished)
	s.Require().NoError(err)
	s.Equal(event.StatusPublished, updated.Status)
}

func (s *EventServiceSuite) TestCancellationCascades() {
	ev := s.createEvent(10)
	s.cascade.cancelled = 3

	_, err := s.svc.Transition(s.ctx, s.owner, ev.ID, event.StatusCancelled)
	s.Require().NoError(err)

	s.Equal(1, s.cascade.calls)
	s.Equal(ev.ID, s.cascade.lastEvent)
}

func (s *EventServiceSuite) TestNonCancellingTransitionDoesNotCascade() {
	ev := s.createEvent(10)

	_, err := s.svc.Transition(s.ctx, s.owner, ev.ID, event.StatusPublished)
	s.Require().NoError(err)
	s.Zero(s.cascade.calls)
}

func (s *EventServiceSuite) TestUpdateCapacityWhileDraft() {
	ev := s.createEvent(10)

	updated, err := s.svc.UpdateCapacity(s.ctx, s.owner, ev.ID, 50)
	s.Require().NoError(err)
	s.Equal(50, updated.Capacity)

	entry := s.lastAudit()
	s.Equal(audit.ActionEventUpdateCapacity, entry.Action)
	s.Equal(audit.OutcomeSuccess, entry.Outcome)
}

func (s *EventServiceSuite) TestUpdateCapacityRejectsShrinkBelowConfirmed() {
	ev := s.createEvent(10)
	s.counter.confirmed = 7

	_, err := s.svc.UpdateCapacity(s.ctx, s.owner, ev.ID, 5)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeCapacityBelowDemand))

	stored, err := s.svc.Get(s.ctx, ev.ID)
	s.Require().NoError(err)
	s.Equal(10, stored.Capacity)
}

func (s *EventServiceSuite) TestUpdateCapacityLockedOnceActive() {
	ev := s.createEvent(10)
	_, err := s.svc.Transition(s.ctx, s.owner, ev.ID, event.StatusPublished)
	s.Require().NoError(err)
	_, err = s.svc.Transition(s.ctx, s.owner, ev.ID, event.StatusActive)
	s.Require().NoError(err)

	_, err = s.svc.UpdateCapacity(s.ctx, s.owner, ev.ID, 100)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeCapacityLocked))
}

func (s *EventServiceSuite) TestDeleteDraftOnly() {
	ev := s.createEvent(10)

	s.Require().NoError(s.svc.Delete(s.ctx, s.owner, ev.ID))
	_, err := s.svc.Get(s.ctx, ev.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	published := s.createEvent(10)
	_, err = s.svc.Transition(s.ctx, s.owner, published.ID, event.StatusPublished)
	s.Require().NoError(err)

	err = s.svc.Delete(s.ctx, s.owner, published.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *EventServiceSuite) TestGetUnknownEvent() {
	_, err := s.svc.Get(s.ctx, domain.NewEventID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListByOwnerFiltersEvents(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	store := event.NewInMemoryStore()
	svc := New(store, &stubCounter{}, keymutex.New(), tx.NopRunner{}, audit.NewPublisher(audit.NewInMemoryStore()))

	admin1 := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	admin2 := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}

	for i, actor := range []domain.Actor{admin1, admin1, admin2} {
		_, err := svc.Create(ctx, actor, CreateParams{
			Title:    "Event",
			Schedule: now.Add(time.Duration(i+1) * time.Hour),
			Capacity: 5,
		})
		require.NoError(t, err)
	}

	mine, err := svc.ListByOwner(ctx, admin1.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
