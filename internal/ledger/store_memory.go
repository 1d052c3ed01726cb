package ledger

import (
	"context"
	"sync"

	id "medcommons/pkg/domain"
	"medcommons/pkg/platform/sentinel"
)

// InMemoryStore keeps the ledger in process memory. Appends assign ids from
// a local monotonic counter starting at 1.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
	nextID  int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Append(_ context.Context, record Record) (id.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record = record.Clone()
	record.ID = id.RecordID(s.nextID)
	s.nextID++
	s.records = append(s.records, record)
	return record.ID, nil
}

func (s *InMemoryStore) Find(_ context.Context, recordID id.RecordID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Ids are dense and start at 1, so the slice index is id-1.
	idx := int(recordID) - 1
	if idx < 0 || idx >= len(s.records) {
		return Record{}, sentinel.ErrNotFound
	}
	return s.records[idx].Clone(), nil
}

func (s *InMemoryStore) Snapshot(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record.Clone())
	}
	return out, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
