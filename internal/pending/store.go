package pending

import (
	"context"
	"slices"
	"sync"
)

// Store holds pending selections. Take and TakeFirst remove the entry they
// return, so an entry is handed out at most once.
type Store interface {
	Put(ctx context.Context, sel Selection) error
	Take(ctx context.Context, correlationID string) (*Selection, error)
	TakeFirst(ctx context.Context, ownerID string) (*Selection, error)
	Count(ctx context.Context, ownerID string) (int, error)
}

var _ Store = (*MemoryStore)(nil)

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Selection
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Selection)}
}

func (s *MemoryStore) Put(_ context.Context, sel Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[sel.CorrelationID]; !exists {
		s.order = append(s.order, sel.CorrelationID)
	}
	s.entries[sel.CorrelationID] = sel
	return nil
}

func (s *MemoryStore) Take(_ context.Context, correlationID string) (*Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.takeLocked(correlationID), nil
}

func (s *MemoryStore) TakeFirst(_ context.Context, ownerID string) (*Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		if s.entries[id].OwnerID == ownerID {
			return s.takeLocked(id), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Count(_ context.Context, ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sel := range s.entries {
		if ownerID == "" || sel.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) takeLocked(correlationID string) *Selection {
	sel, ok := s.entries[correlationID]
	if !ok {
		return nil
	}

	delete(s.entries, correlationID)
	if i := slices.Index(s.order, correlationID); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return &sel
}
