package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(RedisOptions{Addr: mr.Addr(), Prefix: "bo:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheGetSet(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("bo:k"), "keys carry the prefix")

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	mr.FastForward(2 * time.Minute)
	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "d", []byte("x"), 0))
	require.NoError(t, c.Delete(ctx, "d"))
	assert.False(t, mr.Exists("bo:d"))
	assert.NoError(t, c.Ping(ctx))
}

func TestRedisCacheClear(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	acme, globex := uuid.New(), uuid.New()
	// more than two unlink batches
	for i := 0; i < 250; i++ {
		require.NoError(t, c.Set(ctx, RolePermissionsKey(acme, uuid.New()), []byte("[]"), time.Minute))
	}
	globexKey := RolePermissionsKey(globex, uuid.New())
	require.NoError(t, c.Set(ctx, globexKey, []byte("[]"), time.Minute))
	require.NoError(t, c.Set(ctx, TenantKey("acme"), []byte("{}"), time.Minute))
	require.NoError(t, mr.Set("unprefixed", "x"))

	require.NoError(t, c.Clear(ctx, TenantPermissionsPattern(acme)))
	assert.ElementsMatch(t, []string{"bo:" + globexKey, "bo:" + TenantKey("acme"), "unprefixed"}, mr.Keys())

	require.NoError(t, c.Clear(ctx, AllPermissionsPattern))
	assert.ElementsMatch(t, []string{"bo:" + TenantKey("acme"), "unprefixed"}, mr.Keys())

	require.NoError(t, c.Clear(ctx, AllPermissionsPattern), "nothing left to match")
}
