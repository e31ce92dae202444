package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, "test:catalog:", time.Minute), mr
}

type cachedItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRedisCache_GetSet(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	var got cachedItem
	hit, err := cache.Get(ctx, "item", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "item", cachedItem{Name: "phone", Count: 3}))
	assert.True(t, mr.Exists("test:catalog:item"))

	hit, err = cache.Get(ctx, "item", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, cachedItem{Name: "phone", Count: 3}, got)

	stats := cache.Snapshot()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 1, stats.Sets)
}

func TestRedisCache_TTL(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "item", cachedItem{Name: "phone"}))
	mr.FastForward(2 * time.Minute)

	var got cachedItem
	hit, err := cache.Get(ctx, "item", &got)
	require.NoError(t, err)
	assert.False(t, hit, "entry expires after the TTL")
}

func TestRedisCache_DeletePattern(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "product:1", cachedItem{Name: "a"}))
	require.NoError(t, cache.Set(ctx, "product:2", cachedItem{Name: "b"}))
	require.NoError(t, cache.Set(ctx, "categories", []cachedItem{{Name: "c"}}))
	require.NoError(t, mr.Set("other:key", "kept"))

	require.NoError(t, cache.DeletePattern(ctx, "product:*"))
	assert.False(t, mr.Exists("test:catalog:product:1"))
	assert.False(t, mr.Exists("test:catalog:product:2"))
	assert.True(t, mr.Exists("test:catalog:categories"))

	require.NoError(t, cache.DeletePattern(ctx, "*"))
	assert.False(t, mr.Exists("test:catalog:categories"))
	assert.True(t, mr.Exists("other:key"), "keys outside the prefix are untouched")
}

func TestRedisCache_ErrorsAreCounted(t *testing.T) {
	cache, mr := setupTestCache(t)
	mr.Close()

	var got cachedItem
	_, err := cache.Get(context.Background(), "item", &got)
	assert.Error(t, err)
	assert.EqualValues(t, 1, cache.Snapshot().Errors)
}
