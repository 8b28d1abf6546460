package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lingua-app/internal/domain/access"
)

// Session-scoped mirror of a user's entitlement snapshot. Access checks on
// hot read paths hit this instead of re-fetching the user row; the
// enrollment coordinator refreshes it after every confirmed commit. A miss
// is (nil, nil): callers fall back to the database.

const keyPrefix = "entitlements:"

type RedisEntitlementStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisEntitlementStore(rdb *redis.Client, ttl time.Duration) *RedisEntitlementStore {
	return &RedisEntitlementStore{rdb: rdb, ttl: ttl}
}

func (s *RedisEntitlementStore) Get(ctx context.Context, userID uint) (*access.Entitlements, error) {
	raw, err := s.rdb.Get(ctx, fmt.Sprintf("%s%d", keyPrefix, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e access.Entitlements
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *RedisEntitlementStore) Set(ctx context.Context, userID uint, e access.Entitlements) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, fmt.Sprintf("%s%d", keyPrefix, userID), raw, s.ttl).Err()
}

func (s *RedisEntitlementStore) Invalidate(ctx context.Context, userID uint) error {
	return s.rdb.Del(ctx, fmt.Sprintf("%s%d", keyPrefix, userID)).Err()
}

// MemoryEntitlementStore backs deployments without REDIS_URL and the test
// suite. Same semantics, no TTL.
type MemoryEntitlementStore struct {
	mu        sync.RWMutex
	snapshots map[uint]access.Entitlements
}

func NewMemoryEntitlementStore() *MemoryEntitlementStore {
	return &MemoryEntitlementStore{snapshots: make(map[uint]access.Entitlements)}
}

func (s *MemoryEntitlementStore) Get(_ context.Context, userID uint) (*access.Entitlements, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.snapshots[userID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *MemoryEntitlementStore) Set(_ context.Context, userID uint, e access.Entitlements) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[userID] = e
	return nil
}

func (s *MemoryEntitlementStore) Invalidate(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, userID)
	return nil
}
