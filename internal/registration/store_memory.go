package registration

import (
	"context"
	"sync"

	"eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
)

type eventCounters struct {
	confirmed  int
	waitlisted int
}

// InMemoryStore keeps registrations in maps with per-event counters so
// admission checks stay O(1) regardless of event size.
type InMemoryStore struct {
	mu        sync.RWMutex
	regs      map[domain.RegistrationID]*Registration
	byEvent   map[domain.EventID][]domain.RegistrationID
	byStudent map[domain.UserID][]domain.RegistrationID
	live      map[domain.EventID]map[domain.UserID]domain.RegistrationID
	counters  map[domain.EventID]*eventCounters
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		regs:      make(map[domain.RegistrationID]*Registration),
		byEvent:   make(map[domain.EventID][]domain.RegistrationID),
		byStudent: make(map[domain.UserID][]domain.RegistrationID),
		live:      make(map[domain.EventID]map[domain.UserID]domain.RegistrationID),
		counters:  make(map[domain.EventID]*eventCounters),
	}
}

func (s *InMemoryStore) Create(_ context.Context, reg *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.regs[reg.ID]; exists {
		return sentinel.ErrConflict
	}
	if reg.State.IsLive() {
		if _, taken := s.live[reg.EventID][reg.StudentID]; taken {
			return sentinel.ErrConflict
		}
	}

	clone := *reg
	s.regs[reg.ID] = &clone
	s.byEvent[reg.EventID] = append(s.byEvent[reg.EventID], reg.ID)
	s.byStudent[reg.StudentID] = append(s.byStudent[reg.StudentID], reg.ID)
	if reg.State.IsLive() {
		if s.live[reg.EventID] == nil {
			s.live[reg.EventID] = make(map[domain.UserID]domain.RegistrationID)
		}
		s.live[reg.EventID][reg.StudentID] = reg.ID
	}
	s.count(reg.EventID).apply(reg.State, +1)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.RegistrationID) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.regs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *reg
	return &clone, nil
}

func (s *InMemoryStore) FindLive(_ context.Context, eventID domain.EventID, studentID domain.UserID) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.live[eventID][studentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.regs[id]
	return &clone, nil
}

func (s *InMemoryStore) ListByEvent(_ context.Context, eventID domain.EventID) ([]*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byEvent[eventID]), nil
}

func (s *InMemoryStore) ListByStudent(_ context.Context, studentID domain.UserID) ([]*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byStudent[studentID]), nil
}

func (s *InMemoryStore) ConfirmedCount(_ context.Context, eventID domain.EventID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count(eventID).confirmed, nil
}

func (s *InMemoryStore) WaitlistCount(_ context.Context, eventID domain.EventID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count(eventID).waitlisted, nil
}

func (s *InMemoryStore) Update(_ context.Context, reg *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.regs[reg.ID]
	if !ok {
		return sentinel.ErrNotFound
	}

	if old.State != reg.State {
		s.count(reg.EventID).apply(old.State, -1)
		s.count(reg.EventID).apply(reg.State, +1)
		if old.State.IsLive() && !reg.State.IsLive() {
			delete(s.live[reg.EventID], reg.StudentID)
		}
	}

	clone := *reg
	s.regs[reg.ID] = &clone
	return nil
}

func (s *InMemoryStore) FirstWaitlisted(_ context.Context, eventID domain.EventID) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.byEvent[eventID] {
		reg := s.regs[id]
		if reg.State == StateWaitlisted && reg.Position == 1 {
			clone := *reg
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ShiftWaitlist(_ context.Context, eventID domain.EventID, vacatedPosition int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.byEvent[eventID] {
		reg := s.regs[id]
		if reg.State == StateWaitlisted && reg.Position > vacatedPosition {
			reg.Position--
		}
	}
	return nil
}

// count returns the counters for an event, lazily initialized. Callers
// hold s.mu.
func (s *InMemoryStore) count(eventID domain.EventID) *eventCounters {
	c, ok := s.counters[eventID]
	if !ok {
		c = &eventCounters{}
		s.counters[eventID] = c
	}
	return c
}

func (c *eventCounters) apply(state State, delta int) {
	switch state {
	case StateConfirmed:
		c.confirmed += delta
	case StateWaitlisted:
		c.waitlisted += delta
	}
}

// collect clones registrations in stored (arrival) order.
func (s *InMemoryStore) collect(ids []domain.RegistrationID) []*Registration {
	out := make([]*Registration, 0, len(ids))
	for _, id := range ids {
		clone := *s.regs[id]
		out = append(out, &clone)
	}
	return out
}
