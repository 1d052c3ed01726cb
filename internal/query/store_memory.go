package query

import (
	"context"
	"sync"

	"medcommons/contracts/fhe"
	id "medcommons/pkg/domain"
	"medcommons/pkg/platform/sentinel"
)

// InMemoryQueryStore is the development and test implementation of
// QueryStore.
type InMemoryQueryStore struct {
	mu      sync.RWMutex
	queries map[id.ActorID]ResearchQuery
}

func NewInMemoryQueryStore() *InMemoryQueryStore {
	return &InMemoryQueryStore{queries: make(map[id.ActorID]ResearchQuery)}
}

func (s *InMemoryQueryStore) Save(_ context.Context, query ResearchQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries[query.Requester] = query.clone()
	return nil
}

func (s *InMemoryQueryStore) Find(_ context.Context, requester id.ActorID) (ResearchQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, ok := s.queries[requester]
	if !ok {
		return ResearchQuery{}, sentinel.ErrNotFound
	}
	return query.clone(), nil
}

func (s *InMemoryQueryStore) MarkProcessed(_ context.Context, requester id.ActorID, result fhe.Ciphertext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, ok := s.queries[requester]
	if !ok {
		return sentinel.ErrNotFound
	}
	if query.Processed {
		return sentinel.ErrInvalidState
	}
	query.Result = cloneCiphertext(result)
	query.Processed = true
	s.queries[requester] = query
	return nil
}

// InMemoryPendingStore is the development and test implementation of
// PendingStore.
type InMemoryPendingStore struct {
	mu      sync.Mutex
	pending map[string]PendingRequest
}

func NewInMemoryPendingStore() *InMemoryPendingStore {
	return &InMemoryPendingStore{pending: make(map[string]PendingRequest)}
}

func (s *InMemoryPendingStore) Put(_ context.Context, pending PendingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pending[pending.RequestID]; exists {
		return sentinel.ErrConflict
	}
	s.pending[pending.RequestID] = pending
	return nil
}

func (s *InMemoryPendingStore) Peek(_ context.Context, requestID string) (PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[requestID]
	if !ok {
		return PendingRequest{}, sentinel.ErrNotFound
	}
	return pending, nil
}

func (s *InMemoryPendingStore) Consume(_ context.Context, requestID string) (PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[requestID]
	if !ok {
		return PendingRequest{}, sentinel.ErrNotFound
	}
	delete(s.pending, requestID)
	return pending, nil
}

// InMemoryCleartextStore is the development and test implementation of
// CleartextStore.
type InMemoryCleartextStore struct {
	mu         sync.RWMutex
	cleartexts map[id.ActorID][]byte
}

func NewInMemoryCleartextStore() *InMemoryCleartextStore {
	return &InMemoryCleartextStore{cleartexts: make(map[id.ActorID][]byte)}
}

func (s *InMemoryCleartextStore) Put(_ context.Context, requester id.ActorID, cleartext []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(cleartext))
	copy(stored, cleartext)
	s.cleartexts[requester] = stored
	return nil
}

func (s *InMemoryCleartextStore) Find(_ context.Context, requester id.ActorID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cleartext, ok := s.cleartexts[requester]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]byte, len(cleartext))
	copy(out, cleartext)
	return out, nil
}
