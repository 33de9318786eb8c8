package adapter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"quiz-author/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryCache(t *testing.T) *MemoryCacheAdapter {
	t.Helper()
	cache := NewMemoryCacheAdapter()
	t.Cleanup(cache.Close)
	return cache
}

func TestMemoryCacheAdapter(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache(t)

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "draft", "v1", 50*time.Millisecond))
	require.NoError(t, cache.Set(ctx, "forever", "v2", 0))

	val, err := cache.Get(ctx, "draft")
	require.NoError(t, err)
	assert.Equal(t, "v1", val)

	time.Sleep(80 * time.Millisecond)
	_, err = cache.Get(ctx, "draft")
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "entry expires at its deadline")

	val, err = cache.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)

	require.NoError(t, cache.Delete(ctx, "forever", "never-set"))
	_, err = cache.Get(ctx, "forever")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	assert.NoError(t, cache.Ping(ctx))
}

func TestMemoryCacheAdapter_Expire(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache(t)

	require.NoError(t, cache.Set(ctx, "image", "png", 100*time.Millisecond))
	require.NoError(t, cache.Set(ctx, "stale", "png", 10*time.Millisecond))

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, cache.Expire(ctx, 200*time.Millisecond, "image", "stale", "never-set"))

	time.Sleep(100 * time.Millisecond)
	val, err := cache.Get(ctx, "image")
	require.NoError(t, err, "deadline moved past the original one")
	assert.Equal(t, "png", val)

	_, err = cache.Get(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "an expired key is not revived")

	_, err = cache.Get(ctx, "never-set")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, cache.Expire(ctx, 0, "image"))
	time.Sleep(150 * time.Millisecond)
	_, err = cache.Get(ctx, "image")
	assert.NoError(t, err, "zero expiration keeps the key")
}

func TestMemoryCacheAdapter_EvictsAbandonedEntries(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache(t)

	for i := 0; i < 1000; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("draft:%d", i), "{}", time.Millisecond))
	}
	require.NoError(t, cache.Set(ctx, "live", "{}", time.Hour))

	assert.Eventually(t, func() bool { return cache.Len() == 1 }, 2*time.Second, 10*time.Millisecond,
		"expired entries are removed without being read")

	val, err := cache.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "{}", val)
}

func TestMemoryCacheAdapter_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCacheAdapter()
	cache.Close()
	assert.NotPanics(t, cache.Close)
}
