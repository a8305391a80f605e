package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryCacheExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newMemoryCache(time.Hour, clock.Now)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	clock.Advance(2 * time.Minute)

	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	ok, err := c.Exists(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok, "entries without ttl never expire")
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCacheClearPattern(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	t1, t2 := uuid.New(), uuid.New()
	r1, r2 := uuid.New(), uuid.New()
	for _, key := range []string{
		RolePermissionsKey(t1, r1),
		RolePermissionsKey(t1, r2),
		RolePermissionsKey(t2, r1),
		TenantKey("acme"),
	} {
		require.NoError(t, c.Set(ctx, key, []byte("x"), time.Minute))
	}

	require.NoError(t, c.Clear(ctx, TenantPermissionsPattern(t1)))
	assert.Equal(t, 2, c.Len())

	ok, _ := c.Exists(ctx, RolePermissionsKey(t2, r1))
	assert.True(t, ok)

	require.NoError(t, c.Clear(ctx, AllPermissionsPattern))
	assert.Equal(t, 1, c.Len())
	ok, _ = c.Exists(ctx, TenantKey("acme"))
	assert.True(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	var codes []string
	hit, err := GetJSON(ctx, c, "k", &codes)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, SetJSON(ctx, c, "k", []string{"roles:read", "users:read"}, time.Minute))
	hit, err = GetJSON(ctx, c, "k", &codes)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"roles:read", "users:read"}, codes)

	require.NoError(t, c.Set(ctx, "bad", []byte("{not json"), time.Minute))
	hit, err = GetJSON(ctx, c, "bad", &codes)
	require.NoError(t, err)
	assert.False(t, hit)
	ok, _ := c.Exists(ctx, "bad")
	assert.False(t, ok)
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'z'

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}
