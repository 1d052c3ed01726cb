package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"medcommons/internal/platform/redis"
	id "medcommons/pkg/domain"
	"medcommons/pkg/platform/sentinel"
)

// RedisPendingStore keeps outstanding requests in Redis so callbacks can
// land on any instance. Exactly-once consumption rides on GETDEL.
type RedisPendingStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPendingStore creates a pending store with the given entry TTL.
// A zero ttl means entries never expire.
func NewRedisPendingStore(client *redis.Client, ttl time.Duration) *RedisPendingStore {
	return &RedisPendingStore{client: client, ttl: ttl}
}

func pendingKey(requestID string) string {
	return "pending:" + requestID
}

func (s *RedisPendingStore) Put(ctx context.Context, pending PendingRequest) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending request: %w", err)
	}
	ok, err := s.client.SetNX(ctx, pendingKey(pending.RequestID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store pending request: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisPendingStore) Peek(ctx context.Context, requestID string) (PendingRequest, error) {
	payload, err := s.client.Get(ctx, pendingKey(requestID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return PendingRequest{}, sentinel.ErrNotFound
	}
	if err != nil {
		return PendingRequest{}, fmt.Errorf("load pending request: %w", err)
	}
	return decodePending(payload)
}

func (s *RedisPendingStore) Consume(ctx context.Context, requestID string) (PendingRequest, error) {
	payload, err := s.client.GetDel(ctx, pendingKey(requestID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return PendingRequest{}, sentinel.ErrNotFound
	}
	if err != nil {
		return PendingRequest{}, fmt.Errorf("consume pending request: %w", err)
	}
	return decodePending(payload)
}

func decodePending(payload []byte) (PendingRequest, error) {
	var pending PendingRequest
	if err := json.Unmarshal(payload, &pending); err != nil {
		return PendingRequest{}, fmt.Errorf("decode pending request: %w", err)
	}
	return pending, nil
}

// RedisCleartextStore holds decrypted results with a bounded lifetime;
// cleartext is the one thing the system stores that is not ciphertext, so
// it expires instead of accumulating.
type RedisCleartextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCleartextStore(client *redis.Client, ttl time.Duration) *RedisCleartextStore {
	return &RedisCleartextStore{client: client, ttl: ttl}
}

func cleartextKey(requester id.ActorID) string {
	return "decrypted:" + requester.String()
}

func (s *RedisCleartextStore) Put(ctx context.Context, requester id.ActorID, cleartext []byte) error {
	if err := s.client.Set(ctx, cleartextKey(requester), cleartext, s.ttl).Err(); err != nil {
		return fmt.Errorf("store decrypted result: %w", err)
	}
	return nil
}

func (s *RedisCleartextStore) Find(ctx context.Context, requester id.ActorID) ([]byte, error) {
	cleartext, err := s.client.Get(ctx, cleartextKey(requester)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load decrypted result: %w", err)
	}
	return cleartext, nil
}
