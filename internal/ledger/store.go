package ledger

import (
	"context"

	id "medcommons/pkg/domain"
)

// Store persists ledger records. Implementations assign ids from a strictly
// increasing sequence starting at 1, never reuse one, and offer no mutation
// or deletion of stored records.
type Store interface {
	// Append stores a new record and returns its assigned id.
	Append(ctx context.Context, record Record) (id.RecordID, error)
	// Find returns a single record; sentinel.ErrNotFound when absent.
	Find(ctx context.Context, recordID id.RecordID) (Record, error)
	// Snapshot returns all records in ascending id order. The coordinator
	// reads this exactly once per computation request.
	Snapshot(ctx context.Context) ([]Record, error)
	// Count returns the current ledger size.
	Count(ctx context.Context) (int, error)
}
