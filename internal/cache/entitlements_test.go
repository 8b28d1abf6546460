package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua-app/internal/domain/access"
)

func TestMemoryStoreMissReturnsNil(t *testing.T) {
	s := NewMemoryEntitlementStore()

	e, err := s.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestMemoryStoreRoundTripAndInvalidate(t *testing.T) {
	s := NewMemoryEntitlementStore()
	in := access.Entitlements{Credits: 3, EnrolledClassIDs: []string{"cls-1"}}

	require.NoError(t, s.Set(context.Background(), 42, in))

	out, err := s.Get(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 3, out.Credits)
	assert.Equal(t, []string{"cls-1"}, out.EnrolledClassIDs)

	require.NoError(t, s.Invalidate(context.Background(), 42))
	out, err = s.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, out)
}

// Redis failures must surface to the caller, not vanish; an unreachable
// server is the cheapest way to drive all three operations through the
// real client.
func TestRedisStoreSurfacesConnectionErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer rdb.Close()
	s := NewRedisEntitlementStore(rdb, time.Minute)

	assert.Error(t, s.Set(context.Background(), 1, access.Entitlements{Credits: 1}))

	_, err := s.Get(context.Background(), 1)
	assert.Error(t, err)

	assert.Error(t, s.Invalidate(context.Background(), 1))
}

func TestMemoryStoreReturnsCopyPerGet(t *testing.T) {
	s := NewMemoryEntitlementStore()
	require.NoError(t, s.Set(context.Background(), 1, access.Entitlements{Credits: 5}))

	a, _ := s.Get(context.Background(), 1)
	a.Credits = 0

	b, _ := s.Get(context.Background(), 1)
	assert.Equal(t, 5, b.Credits)
}
