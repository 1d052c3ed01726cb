package registry

import (
	"context"
	"sync"

	id "medcommons/pkg/domain"
	"medcommons/pkg/platform/sentinel"
)

// InMemoryStore keeps role assignments in process memory.
type InMemoryStore struct {
	mu           sync.RWMutex
	participants map[id.ActorID]Participant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{participants: make(map[id.ActorID]Participant)}
}

func (s *InMemoryStore) Register(_ context.Context, participant Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.participants[participant.Actor]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.participants[participant.Actor] = participant
	return nil
}

func (s *InMemoryStore) FindByActor(_ context.Context, actor id.ActorID) (Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[actor]
	if !ok {
		return Participant{}, sentinel.ErrNotFound
	}
	return participant, nil
}
