package audit

import (
	"context"
	"sync"

	"eventhub/pkg/domain"
)

// InMemoryStore keeps entries in insertion order. Suitable for tests and
// single-process deployments without Postgres.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(limit, func(Entry) bool { return true }), nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID domain.UserID, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(limit, func(e Entry) bool { return e.ActorID == actorID }), nil
}

func (s *InMemoryStore) ListByTarget(_ context.Context, targetType TargetType, targetID string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(limit, func(e Entry) bool {
		return e.TargetType == targetType && e.TargetID == targetID
	}), nil
}

// filter walks newest-first so the feed is time-ordered descending, the
// same ordering the Postgres store produces.
func (s *InMemoryStore) filter(limit int, keep func(Entry) bool) []Entry {
	var out []Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if keep(s.entries[i]) {
			out = append(out, s.entries[i])
		}
	}
	return out
}
