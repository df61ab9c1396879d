package compound

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	redisclient "orrery-server/internal/shared/redis"

	"github.com/redis/go-redis/v9"
)

// RedisCache caches catalog lookups so repeated first-references to the
// same CID do not hammer the external catalog.
type RedisCache struct {
	client *redisclient.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache returns nil when no redis client is configured; the
// resolver treats a nil cache as a pass-through.
func NewRedisCache(client *redisclient.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if client == nil {
		return nil
	}

	logger.Debug("Initializing compound catalog cache", "ttl", ttl)
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(cid int) string {
	return fmt.Sprintf("catalog:compound:%d", cid)
}

func (c *RedisCache) GetCatalogRecord(ctx context.Context, cid int) (*CatalogRecord, bool) {
	logger := c.logger.With("component", "compound_cache", "cid", cid)

	data, err := c.client.Get(ctx, cacheKey(cid)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Failed to read catalog cache", "error", err)
		}
		return nil, false
	}

	var record CatalogRecord
	if err := json.Unmarshal(data, &record); err != nil {
		logger.Warn("Failed to decode cached catalog record", "error", err)
		return nil, false
	}

	logger.Debug("Catalog cache hit")
	return &record, true
}

func (c *RedisCache) SetCatalogRecord(ctx context.Context, cid int, record *CatalogRecord) {
	logger := c.logger.With("component", "compound_cache", "cid", cid)

	data, err := json.Marshal(record)
	if err != nil {
		logger.Warn("Failed to encode catalog record for cache", "error", err)
		return
	}

	if err := c.client.Set(ctx, cacheKey(cid), data, c.ttl).Err(); err != nil {
		logger.Warn("Failed to write catalog cache", "error", err)
	}
}
