package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CacheService provides read-through caching for hot campaign reads. Writes
// to a campaign invalidate its keys; the money path never reads the cache.
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyCampaign is for single campaign reads
	CacheKeyCampaign CacheKeyType = "campaign"
	// CacheKeyCampaignList is for live campaign listings
	CacheKeyCampaignList CacheKeyType = "campaigns"
	// CacheKeyAnalytics is for campaign analytics summaries
	CacheKeyAnalytics CacheKeyType = "analytics"
	// CacheKeyPrediction is for revenue forecasts
	CacheKeyPrediction CacheKeyType = "prediction"
)

// GenerateCacheKey generates a cache key for a given type and parameters.
// Format: <type>:<param1>:<param2>:...
func (c *CacheService) GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	normalized := make([]string, len(params))
	for i, param := range params {
		normalized[i] = strings.ToLower(param)
	}
	parts := append([]string{string(keyType)}, normalized...)
	return strings.Join(parts, ":")
}

// GenerateCampaignKey generates a cache key for one campaign
func (c *CacheService) GenerateCampaignKey(campaignID string) string {
	return c.GenerateCacheKey(CacheKeyCampaign, campaignID)
}

// GenerateCampaignListKey generates a cache key for the live campaign listing
func (c *CacheService) GenerateCampaignListKey() string {
	return c.GenerateCacheKey(CacheKeyCampaignList, "live")
}

// GenerateAnalyticsKey generates a cache key for a campaign analytics summary
func (c *CacheService) GenerateAnalyticsKey(campaignID string) string {
	return c.GenerateCacheKey(CacheKeyAnalytics, campaignID)
}

// GeneratePredictionKey generates a cache key for a stored campaign forecast
func (c *CacheService) GeneratePredictionKey(campaignID string) string {
	return c.GenerateCacheKey(CacheKeyPrediction, campaignID)
}

// Set stores a value in cache with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with a custom TTL
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.redis.Set(ctx, key, data, ttl)
}

// Get retrieves a value from cache and deserializes it. A miss returns
// (false, nil).
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if err.Error() == "redis: nil" {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

// Invalidate removes one or more keys from cache
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...)
}

// InvalidateCampaign removes all keys derived from one campaign
func (c *CacheService) InvalidateCampaign(ctx context.Context, campaignID string) error {
	return c.Invalidate(ctx,
		c.GenerateCampaignKey(campaignID),
		c.GenerateCampaignListKey(),
		c.GenerateAnalyticsKey(campaignID),
		c.GeneratePredictionKey(campaignID),
	)
}
