package storage_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	session "github.com/kentecode/go-session"
	"github.com/kentecode/go-session/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStorage(t *testing.T, prefix string) (*storage.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return storage.NewRedis(client, prefix), mr
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, _ := newRedisStorage(t, "")

	_, err := r.Get(ctx, "auth-storage")
	assert.ErrorIs(t, err, session.ErrNoRecord)

	require.NoError(t, r.Set(ctx, "auth-storage", []byte(`{"a":1}`)))

	got, err := r.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)

	require.NoError(t, r.Delete(ctx, "auth-storage"))
	_, err = r.Get(ctx, "auth-storage")
	assert.ErrorIs(t, err, session.ErrNoRecord)
}

func TestRedisPrefixNamespacesKeys(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedisStorage(t, "app1:")

	require.NoError(t, r.Set(ctx, "auth-storage", []byte("v")))

	raw, err := mr.Get("app1:auth-storage")
	require.NoError(t, err)
	assert.Equal(t, "v", raw)
}

func TestRedisSurfacesConnectionFailure(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedisStorage(t, "")
	mr.Close()

	_, err := r.Get(ctx, "auth-storage")
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNoRecord)
}
