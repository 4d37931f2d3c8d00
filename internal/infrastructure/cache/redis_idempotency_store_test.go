package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisIdempotencyStore_Lifecycle(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisIdempotencyStore(client, "")
	ctx := context.Background()

	claimed, err := store.Claim(ctx, "abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.True(t, mr.Exists("store:idempotency:abc"))

	claimed, err = store.Claim(ctx, "abc", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)

	_, done, found, err := store.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, done)

	require.NoError(t, store.Complete(ctx, "abc", "order-1", time.Hour))
	result, done, found, err := store.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, done)
	assert.Equal(t, "order-1", result)

	mr.FastForward(2 * time.Hour)
	_, _, found, err = store.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisIdempotencyStore_Release(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisIdempotencyStore(client, "test:")
	ctx := context.Background()

	_, err := store.Claim(ctx, "k", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k"))

	claimed, err := store.Claim(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestIdempotencyStoreFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("redis when reachable", func(t *testing.T) {
		_, client := newTestRedis(t)
		store, err := NewIdempotencyStoreFactory(client, WithLogger(zaptest.NewLogger(t))).CreateStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &RedisIdempotencyStore{}, store)
	})

	t.Run("in-memory without client", func(t *testing.T) {
		store, err := NewIdempotencyStoreFactory(nil).CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("fallback when unreachable", func(t *testing.T) {
		mr, client := newTestRedis(t)
		mr.Close()
		store, err := NewIdempotencyStoreFactory(client).CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("error when fallback disabled", func(t *testing.T) {
		mr, client := newTestRedis(t)
		mr.Close()
		_, err := NewIdempotencyStoreFactory(client, WithInMemoryFallback(false)).CreateStore(ctx)
		assert.Error(t, err)
	})
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Server().Addr().Port

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
}
