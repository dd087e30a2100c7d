package event

import (
	"context"
	"sort"
	"sync"

	"eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
)

// InMemoryStore keeps events in a map. Reads return copies so callers
// never share mutable state with the store.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.EventID]*Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.EventID]*Event)}
}

func (s *InMemoryStore) Create(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[event.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *event
	s.events[event.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.EventID) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*Event) bool { return true }), nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID domain.UserID) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(e *Event) bool { return e.OwnerID == ownerID }), nil
}

func (s *InMemoryStore) Update(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *event
	s.events[event.ID] = &clone
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *InMemoryStore) collect(keep func(*Event) bool) []*Event {
	var out []*Event
	for _, e := range s.events {
		if keep(e) {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
