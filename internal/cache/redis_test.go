package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, DefaultOptions())
	t.Cleanup(func() { _ = store.Close() })

	return mr, store
}

func TestRedisStore_SetGet(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	assert.True(t, mr.Exists("schemascan:k"))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestRedisStore_Miss(t *testing.T) {
	_, store := setupTestRedis(t)

	_, err := store.Get(context.Background(), "absent")
	assert.True(t, IsMiss(err))
}

func TestRedisStore_TTL(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("schemascan:k"))

	mr.FastForward(2 * time.Minute)
	ok, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_DefaultTTL(t *testing.T) {
	mr, store := setupTestRedis(t)

	require.NoError(t, store.Set(context.Background(), "k", []byte("v"), 0))
	assert.Equal(t, 24*time.Hour, mr.TTL("schemascan:k"))
}

func TestRedisStore_ClearOnlyPrefix(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("other:key", "keep"))
	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, store.Clear(ctx))

	assert.False(t, mr.Exists("schemascan:a"))
	assert.False(t, mr.Exists("schemascan:b"))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisStore_Delete(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, store.Delete(ctx, "k"))
	assert.False(t, mr.Exists("schemascan:k"))
}

func TestNewRedisStore_ConnectFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisStore(context.Background(), RedisConfig{Addr: addr, Options: DefaultOptions()})
	assert.Error(t, err)
}
