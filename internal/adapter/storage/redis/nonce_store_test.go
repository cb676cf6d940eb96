package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceStore_CheckAndSet_NewNonce(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewNonceStore(client)

	ok, err := store.CheckAndSet(context.Background(), "ldg1alice", "nonce-abc", 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "new nonce should return true")
}

func TestNonceStore_CheckAndSet_Replay(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewNonceStore(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "ldg1alice", "nonce-xyz", 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.CheckAndSet(ctx, "ldg1alice", "nonce-xyz", 2*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "replayed nonce should return false")
}

func TestNonceStore_CheckAndSet_ScopedPerAddress(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewNonceStore(client)
	ctx := context.Background()

	ok1, err := store.CheckAndSet(ctx, "ldg1alice", "nonce-1", 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok1)

	ok2, err := store.CheckAndSet(ctx, "ldg1bob", "nonce-1", 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok2, "same nonce for a different address should be valid")
}

func TestNonceStore_CheckAndSet_ExpiresAfterTTL(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewNonceStore(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "ldg1alice", "nonce-ttl", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	s.FastForward(2 * time.Minute)

	ok, err = store.CheckAndSet(ctx, "ldg1alice", "nonce-ttl", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired nonce may be reused")
}
