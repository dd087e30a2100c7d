package registration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newReg(eventID domain.EventID, state State, position int) *Registration {
	now := time.Now()
	reg := &Registration{
		ID:           domain.NewRegistrationID(),
		EventID:      eventID,
		StudentID:    domain.NewUserID(),
		State:        state,
		Position:     position,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.store.Create(s.ctx, reg))
	return reg
}

func (s *InMemoryStoreSuite) TestCreateRejectsSecondLiveRegistration() {
	eventID := domain.NewEventID()
	reg := s.newReg(eventID, StateConfirmed, 0)

	dupe := &Registration{
		ID:        domain.NewRegistrationID(),
		EventID:   eventID,
		StudentID: reg.StudentID,
		State:     StateWaitlisted,
		Position:  1,
	}
	s.ErrorIs(s.store.Create(s.ctx, dupe), sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestCreateAllowsNewLiveAfterCancel() {
	eventID := domain.NewEventID()
	reg := s.newReg(eventID, StateConfirmed, 0)

	reg.Cancel(time.Now())
	s.Require().NoError(s.store.Update(s.ctx, reg))

	again := &Registration{
		ID:        domain.NewRegistrationID(),
		EventID:   eventID,
		StudentID: reg.StudentID,
		State:     StateConfirmed,
	}
	s.NoError(s.store.Create(s.ctx, again))

	live, err := s.store.FindLive(s.ctx, eventID, reg.StudentID)
	s.Require().NoError(err)
	s.Equal(again.ID, live.ID)
}

func (s *InMemoryStoreSuite) TestCountersTrackStateChanges() {
	eventID := domain.NewEventID()
	confirmed := s.newReg(eventID, StateConfirmed, 0)
	waitlisted := s.newReg(eventID, StateWaitlisted, 1)
	s.newReg(eventID, StateWaitlisted, 2)

	count, err := s.store.ConfirmedCount(s.ctx, eventID)
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.store.WaitlistCount(s.ctx, eventID)
	s.Require().NoError(err)
	s.Equal(2, count)

	confirmed.Cancel(time.Now())
	s.Require().NoError(s.store.Update(s.ctx, confirmed))

	waitlisted.Confirm(time.Now())
	s.Require().NoError(s.store.Update(s.ctx, waitlisted))

	count, err = s.store.ConfirmedCount(s.ctx, eventID)
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.store.WaitlistCount(s.ctx, eventID)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *InMemoryStoreSuite) TestCountersScopedPerEvent() {
	first := domain.NewEventID()
	second := domain.NewEventID()
	s.newReg(first, StateConfirmed, 0)
	s.newReg(second, StateConfirmed, 0)
	s.newReg(second, StateConfirmed, 0)

	count, err := s.store.ConfirmedCount(s.ctx, first)
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.store.ConfirmedCount(s.ctx, second)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *InMemoryStoreSuite) TestFirstWaitlistedReturnsHead() {
	eventID := domain.NewEventID()
	head := s.newReg(eventID, StateWaitlisted, 1)
	s.newReg(eventID, StateWaitlisted, 2)

	found, err := s.store.FirstWaitlisted(s.ctx, eventID)
	s.Require().NoError(err)
	s.Equal(head.ID, found.ID)

	_, err = s.store.FirstWaitlisted(s.ctx, domain.NewEventID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestShiftWaitlistCompactsBehindVacated() {
	eventID := domain.NewEventID()
	first := s.newReg(eventID, StateWaitlisted, 1)
	second := s.newReg(eventID, StateWaitlisted, 2)
	third := s.newReg(eventID, StateWaitlisted, 3)

	second.Cancel(time.Now())
	s.Require().NoError(s.store.Update(s.ctx, second))
	s.Require().NoError(s.store.ShiftWaitlist(s.ctx, eventID, 2))

	unchanged, err := s.store.FindByID(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(1, unchanged.Position)

	shifted, err := s.store.FindByID(s.ctx, third.ID)
	s.Require().NoError(err)
	s.Equal(2, shifted.Position)
}

func (s *InMemoryStoreSuite) TestListOrdersByArrival() {
	eventID := domain.NewEventID()
	first := s.newReg(eventID, StateConfirmed, 0)
	second := s.newReg(eventID, StateWaitlisted, 1)

	regs, err := s.store.ListByEvent(s.ctx, eventID)
	s.Require().NoError(err)
	s.Require().Len(regs, 2)
	s.Equal(first.ID, regs[0].ID)
	s.Equal(second.ID, regs[1].ID)

	mine, err := s.store.ListByStudent(s.ctx, first.StudentID)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(first.ID, mine[0].ID)
}

func (s *InMemoryStoreSuite) TestClonesProtectStoredState() {
	eventID := domain.NewEventID()
	reg := s.newReg(eventID, StateConfirmed, 0)

	found, err := s.store.FindByID(s.ctx, reg.ID)
	s.Require().NoError(err)
	found.State = StateCancelled

	again, err := s.store.FindByID(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(StateConfirmed, again.State)
}
