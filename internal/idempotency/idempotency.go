// Package idempotency tracks which order events the stock service has
// already handled. The store is a fast short-circuit in front of the
// transactional guard row; a duplicate that slips past it still applies
// nothing.
package idempotency

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store remembers processed order ids.
type Store interface {
	// Seen reports whether the order id was already marked.
	Seen(ctx context.Context, orderID uuid.UUID) (bool, error)
	// Mark records the order id as processed.
	Mark(ctx context.Context, orderID uuid.UUID) error
}

// MemoryStore is a process-local Store, used in tests and when no redis
// address is configured.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[uuid.UUID]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[uuid.UUID]struct{})}
}

func (s *MemoryStore) Seen(_ context.Context, orderID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[orderID]
	return ok, nil
}

func (s *MemoryStore) Mark(_ context.Context, orderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[orderID] = struct{}{}
	return nil
}
