package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fixdesk/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMiniredisStore(t *testing.T) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdempotencyStore(client, "")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisIdempotencyStore_MarkProcessed(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.True(t, mr.Exists("fixdesk:event:evt-1"))

	isNew, err = store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestRedisIdempotencyStore_TTL(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	processed, err := store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestRedisIdempotencyStore_Forget(t *testing.T) {
	store, _ := newMiniredisStore(t)
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, store.Forget(ctx, "evt-1"))

	processed, err := store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestRedisIdempotencyStore_ServerDown(t *testing.T) {
	store, mr := newMiniredisStore(t)
	mr.Close()

	_, err := store.MarkProcessed(context.Background(), "evt-1", time.Hour)
	assert.Error(t, err)
}

func TestNewIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := NewIdempotencyStore(ctx, config.EventConfig{IdempotencyBackend: "memory"}, config.RedisConfig{}, zap.NewNop())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		redisCfg := config.RedisConfig{Host: mr.Host(), Port: atoi(t, mr.Port())}

		store, err := NewIdempotencyStore(ctx, config.EventConfig{IdempotencyBackend: "redis"}, redisCfg, zap.NewNop())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &RedisIdempotencyStore{}, store)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		_, err := NewIdempotencyStore(ctx, config.EventConfig{IdempotencyBackend: "redis"},
			config.RedisConfig{Host: "127.0.0.1", Port: 1}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewIdempotencyStore(ctx, config.EventConfig{IdempotencyBackend: "etcd"}, config.RedisConfig{}, zap.NewNop())
		assert.ErrorContains(t, err, "unknown idempotency backend")
	})
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
