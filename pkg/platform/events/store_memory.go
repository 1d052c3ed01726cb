package events

import (
	"context"
	"sync"
)

// InMemoryStore keeps events in process memory. Useful for tests and for the
// read-side listing endpoints when no durable store is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByActor returns events about the given actor, oldest first.
func (s *InMemoryStore) ListByActor(_ context.Context, actor string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.Actor == actor {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListByActorAndTypes narrows ListByActor to a set of event types. An empty
// type set means no filter.
func (s *InMemoryStore) ListByActorAndTypes(_ context.Context, actor string, types []Type) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[Type]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}
	var out []Event
	for _, e := range s.events {
		if e.Actor != actor {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[e.Type]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// ListRecent returns the most recent N events.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.events) - limit
	if start < 0 {
		start = 0
	}
	return append([]Event{}, s.events[start:]...), nil
}
