// Package cache provides the cache-aside layer in front of the upstream
// client. A cache hit is a correctness-neutral optimization: any backend
// failure degrades to a direct fetch and is never surfaced to callers.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/macropulse/macropulse-go/internal/database"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "fred:"

// CurrentKey is the cache key for a series' latest value (short TTL).
func CurrentKey(code string) string {
	return keyPrefix + "current:" + code
}

// HistoricalKey is the cache key for a date-ranged slice (longer TTL).
func HistoricalKey(code string, start, end time.Time) string {
	return fmt.Sprintf("%shistorical:%s:%s:%s",
		keyPrefix, code, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// SeriesPattern matches every cache key of one series, current and
// historical with any date range.
func SeriesPattern(code string) string {
	return keyPrefix + "*" + code + "*"
}

// AllPattern matches every key owned by this cache.
func AllPattern() string {
	return keyPrefix + "*"
}

// Meta annotates a payload with where it came from so callers can report
// freshness.
type Meta struct {
	Cached    bool
	ExpiresIn time.Duration
}

// FetchFunc produces the payload on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// SeriesCache wraps the Redis client with get-or-fetch and pattern
// invalidation. A nil Redis client disables caching entirely.
type SeriesCache struct {
	redis  *database.RedisClient
	logger *logrus.Logger
}

// New creates a series cache. redis may be nil.
func New(redisClient *database.RedisClient, logger *logrus.Logger) *SeriesCache {
	return &SeriesCache{redis: redisClient, logger: logger}
}

// GetOrFetch returns the cached payload for key, or calls fetch and stores
// the result with the given TTL. The returned Meta reports a hit and the
// remaining lifetime. Cache failures degrade to a direct fetch.
func (c *SeriesCache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, Meta, error) {
	if c.redis != nil {
		value, err := c.redis.Get(ctx, key)
		switch {
		case err == nil:
			remaining, ttlErr := c.redis.TTL(ctx, key)
			if ttlErr != nil || remaining < 0 {
				remaining = 0
			}
			return []byte(value), Meta{Cached: true, ExpiresIn: remaining}, nil
		case errors.Is(err, redis.Nil):
			// Miss, fall through to fetch.
		default:
			c.logger.WithError(err).WithField("key", key).Warn("Cache read failed, fetching directly")
		}
	}

	payload, err := fetch(ctx)
	if err != nil {
		return nil, Meta{}, err
	}

	if c.redis != nil {
		if err := c.redis.Set(ctx, key, payload, ttl); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
		}
	}

	return payload, Meta{}, nil
}

// Invalidate deletes every key matching pattern and returns the count
// removed. Backend failures are logged and reported as zero deletions; the
// next read will simply miss.
func (c *SeriesCache) Invalidate(ctx context.Context, pattern string) int {
	if c.redis == nil {
		return 0
	}

	keys, err := c.redis.ScanKeys(ctx, pattern)
	if err != nil {
		c.logger.WithError(err).WithField("pattern", pattern).Warn("Cache scan failed during invalidation")
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	if err := c.redis.Delete(ctx, keys...); err != nil {
		c.logger.WithError(err).WithField("pattern", pattern).Warn("Cache delete failed during invalidation")
		return 0
	}

	c.logger.WithFields(logrus.Fields{
		"pattern": pattern,
		"deleted": len(keys),
	}).Info("Invalidated cache keys")

	return len(keys)
}
