package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

// Store is the key/value surface the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// JSONCache stores JSON-encoded values under a key prefix. Every failure is
// reported as a miss so callers fall through to the source of truth.
type JSONCache struct {
	store  Store
	prefix string
	logger ectologger.Logger
}

func NewJSONCache(store Store, prefix string, logger ectologger.Logger) *JSONCache {
	return &JSONCache{
		store:  store,
		prefix: prefix,
		logger: logger,
	}
}

// Get decodes the cached value into dest and reports whether it was found.
func (c *JSONCache) Get(ctx context.Context, key string, dest any) bool {
	raw, err := c.store.Get(ctx, c.prefix+key)
	if errors.Is(err, ErrMiss) {
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return false
	}
	if err != nil {
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		c.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		c.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("Cached value is not valid JSON")
		return false
	}

	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return true
}

// Set stores value for ttl. Failures are logged and dropped.
func (c *JSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		c.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("Failed to encode cache value")
		return
	}

	if err := c.store.Set(ctx, c.prefix+key, string(data), ttl); err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		c.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("Cache write failed")
		return
	}
	metrics.CacheOperations.WithLabelValues("set", "success").Inc()
}

func (c *JSONCache) Delete(ctx context.Context, keys ...string) {
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, c.prefix+k)
	}
	if err := c.store.Del(ctx, prefixed...); err != nil {
		metrics.CacheOperations.WithLabelValues("delete", "error").Inc()
		c.logger.WithContext(ctx).WithError(err).Warn("Cache delete failed")
		return
	}
	metrics.CacheOperations.WithLabelValues("delete", "success").Inc()
}
