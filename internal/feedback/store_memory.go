package feedback

import (
	"context"
	"sync"

	"eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
)

type pairKey struct {
	event   domain.EventID
	student domain.UserID
}

// InMemoryStore keeps feedback in insertion order per event.
type InMemoryStore struct {
	mu      sync.RWMutex
	byEvent map[domain.EventID][]*Feedback
	byPair  map[pairKey]*Feedback
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byEvent: make(map[domain.EventID][]*Feedback),
		byPair:  make(map[pairKey]*Feedback),
	}
}

func (s *InMemoryStore) Create(_ context.Context, fb *Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{event: fb.EventID, student: fb.StudentID}
	if _, exists := s.byPair[key]; exists {
		return sentinel.ErrConflict
	}

	clone := *fb
	s.byEvent[fb.EventID] = append(s.byEvent[fb.EventID], &clone)
	s.byPair[key] = &clone
	return nil
}

func (s *InMemoryStore) ListByEvent(_ context.Context, eventID domain.EventID) ([]*Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Feedback, 0, len(s.byEvent[eventID]))
	for _, fb := range s.byEvent[eventID] {
		clone := *fb
		out = append(out, &clone)
	}
	return out, nil
}

func (s *InMemoryStore) FindByEventAndStudent(_ context.Context, eventID domain.EventID, studentID domain.UserID) (*Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fb, ok := s.byPair[pairKey{event: eventID, student: studentID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *fb
	return &clone, nil
}
