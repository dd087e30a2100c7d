package identity

import (
	"context"
	"strings"
	"sync"

	"eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
)

// InMemoryStore keeps users in maps keyed by id and lowercased email.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[domain.UserID]*User
	byEmail map[string]*User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[domain.UserID]*User),
		byEmail: make(map[string]*User),
	}
}

func (s *InMemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byID[user.ID]; exists {
		return sentinel.ErrConflict
	}

	clone := *user
	clone.Email = email
	s.byID[user.ID] = &clone
	s.byEmail[email] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *user
	return &clone, nil
}
