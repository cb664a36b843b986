package feed

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const payloadKeyPrefix = "feed:payload:"

// PayloadCache keeps the last successfully fetched calendar export per
// platform in Redis. When a platform goes unreachable the syncer re-parses
// the cached payload instead of contributing nothing: stale availability is
// preferred over falsely reporting dates as free.
type PayloadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPayloadCache wraps the given Redis client. A nil client yields a cache
// whose operations all miss, so callers don't need to branch on whether
// caching is configured.
func NewPayloadCache(client *redis.Client, ttl time.Duration) *PayloadCache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &PayloadCache{client: client, ttl: ttl}
}

// Store saves a platform's raw feed body.
func (c *PayloadCache) Store(ctx context.Context, platform, payload string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, payloadKeyPrefix+platform, payload, c.ttl).Err()
}

// Load returns the last stored body for a platform, or ok=false on a miss.
func (c *PayloadCache) Load(ctx context.Context, platform string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	payload, err := c.client.Get(ctx, payloadKeyPrefix+platform).Result()
	if err != nil {
		// redis.Nil and transport errors alike count as a miss.
		return "", false
	}
	return payload, payload != ""
}
