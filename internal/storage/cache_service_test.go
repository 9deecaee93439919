package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestCache creates a CacheService backed by an in-process Redis.
func setupTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCacheService(&RedisCache{client: client}, time.Minute), mr
}

func TestCacheKeyGeneration(t *testing.T) {
	cache, _ := setupTestCache(t)

	assert.Equal(t, "campaign:abc-123", cache.GenerateCampaignKey("ABC-123"))
	assert.Equal(t, "campaigns:live", cache.GenerateCampaignListKey())
	assert.Equal(t, "analytics:abc", cache.GenerateAnalyticsKey("abc"))
	assert.Equal(t, "prediction:abc", cache.GeneratePredictionKey("abc"))
}

func TestCacheSetGetRoundTrip(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, cache.Set(ctx, "campaign:one", payload{Name: "midnight drive", Count: 7}))

	var got payload
	hit, err := cache.Get(ctx, "campaign:one", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{Name: "midnight drive", Count: 7}, got)
}

func TestCacheMiss(t *testing.T) {
	cache, _ := setupTestCache(t)

	var got map[string]string
	hit, err := cache.Get(context.Background(), "campaign:missing", &got)
	require.NoError(t, err, "A miss is not an error")
	assert.False(t, hit)
}

func TestCacheTTLExpiry(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetWithTTL(ctx, "campaign:short", "value", time.Second))

	mr.FastForward(2 * time.Second)

	var got string
	hit, err := cache.Get(ctx, "campaign:short", &got)
	require.NoError(t, err)
	assert.False(t, hit, "Expired entry should read as a miss")
}

func TestInvalidateCampaign(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	id := "abc-123"
	keys := []string{
		cache.GenerateCampaignKey(id),
		cache.GenerateCampaignListKey(),
		cache.GenerateAnalyticsKey(id),
		cache.GeneratePredictionKey(id),
	}
	for _, key := range keys {
		require.NoError(t, cache.Set(ctx, key, "cached"))
	}

	require.NoError(t, cache.InvalidateCampaign(ctx, id))

	for _, key := range keys {
		var got string
		hit, err := cache.Get(ctx, key, &got)
		require.NoError(t, err)
		assert.False(t, hit, "Key %s should be gone", key)
	}
}
