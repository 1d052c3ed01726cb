package query

import (
	"context"

	"medcommons/contracts/fhe"
	id "medcommons/pkg/domain"
)

// QueryStore holds the per-requester query state.
//
// Implementations return sentinel errors:
//   - Find, MarkProcessed: sentinel.ErrNotFound when the requester has no
//     active query.
//   - MarkProcessed: sentinel.ErrInvalidState when the query is already
//     processed; the stored result is never overwritten.
type QueryStore interface {
	// Save upserts the requester's query, replacing any prior one.
	Save(ctx context.Context, query ResearchQuery) error

	Find(ctx context.Context, requester id.ActorID) (ResearchQuery, error)

	// MarkProcessed writes the result and flips processed in one step.
	MarkProcessed(ctx context.Context, requester id.ActorID, result fhe.Ciphertext) error
}

// PendingStore tracks outstanding external requests keyed by request id.
//
// Implementations return sentinel errors:
//   - Put: sentinel.ErrConflict when the request id is already recorded.
//   - Peek, Consume: sentinel.ErrNotFound when no entry exists.
type PendingStore interface {
	Put(ctx context.Context, pending PendingRequest) error

	// Peek returns the entry without consuming it.
	Peek(ctx context.Context, requestID string) (PendingRequest, error)

	// Consume removes and returns the entry. Exactly one caller wins; every
	// later Consume for the same id fails with sentinel.ErrNotFound.
	Consume(ctx context.Context, requestID string) (PendingRequest, error)
}

// CleartextStore holds decrypted results, keyed by the requester the
// decryption was issued for. Find returns sentinel.ErrNotFound when the
// requester has no decrypted result.
type CleartextStore interface {
	Put(ctx context.Context, requester id.ActorID, cleartext []byte) error
	Find(ctx context.Context, requester id.ActorID) ([]byte, error)
}
